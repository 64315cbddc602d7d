package seeds

func SeedAll() error {
	if err := SeedController(); err != nil {
		return err
	}
	if err := SeedRoster(); err != nil {
		return err
	}
	return nil
}
