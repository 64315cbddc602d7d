package seeds

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/GeoAttend/GA-Backend/internal/roster"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// RosterRow is one student line from the import CSV.
// CSV contract: enrollment_no,name,batch
type RosterRow struct {
	EnrollmentNo string
	Name         string
	Batch        string
}

// ParseRosterCSV reads and validates the roster file. Enrollment numbers are
// normalized at import so lookups never depend on how the registrar typed
// them.
func ParseRosterCSV(path string) ([]RosterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{"enrollment_no", "name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	var rows []RosterRow
	for i, rec := range records[1:] {
		row := RosterRow{
			EnrollmentNo: roster.NormalizeEnrollment(rec[col["enrollment_no"]]),
			Name:         strings.TrimSpace(rec[col["name"]]),
		}
		if idx, ok := col["batch"]; ok && idx < len(rec) {
			row.Batch = strings.TrimSpace(rec[idx])
		}
		if row.EnrollmentNo == "" || row.Name == "" {
			return nil, fmt.Errorf("row %d: enrollment_no and name are required", i+2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SeedRoster imports students from ROSTER_CSV if set. Re-running leaves
// already-known enrollment numbers alone.
func SeedRoster() error {
	path := os.Getenv("ROSTER_CSV")
	if path == "" {
		log.Println("[seeds] ROSTER_CSV not set, skipping roster import")
		return nil
	}

	rows, err := ParseRosterCSV(path)
	if err != nil {
		return fmt.Errorf("parse roster csv: %w", err)
	}

	inserted := 0
	for _, row := range rows {
		student := roster.Student{
			StudentID:    uuid.NewString(),
			EnrollmentNo: row.EnrollmentNo,
			Name:         row.Name,
			Batch:        row.Batch,
		}
		res := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&student)
		if res.Error != nil {
			return fmt.Errorf("insert student %s: %w", row.EnrollmentNo, res.Error)
		}
		inserted += int(res.RowsAffected)
	}

	log.Printf("[seeds] roster import: %d rows, %d new", len(rows), inserted)
	return nil
}
