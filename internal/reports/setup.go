package reports

import (
	"log"

	"github.com/GeoAttend/GA-Backend/internal/config"
)

var (
	scope          string
	editWindowDays int
)

// Init wires the reporting views to the deployment's scope. No migrations
// here: reports are derived reads over tables the attendance feature owns.
func Init(cfg *config.Config) {
	scope = cfg.Scope
	editWindowDays = cfg.EditWindowDays
	log.Printf("[reports] scope=%s edit_window=%dd", scope, editWindowDays)
}
