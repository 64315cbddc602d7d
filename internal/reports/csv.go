package reports

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/roster"
)

// WriteAttendanceCSV renders the export matrix: one row per student, one
// column per class date, Present/Absent cells. Pure over its inputs so the
// handler and tests share it.
func WriteAttendanceCSV(w io.Writer, students []roster.Student, dates []time.Time, matrix map[[2]string]bool) error {
	cw := csv.NewWriter(w)

	header := []string{"Enrollment No", "Student Name"}
	for _, d := range dates {
		header = append(header, d.Format("2006-01-02"))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range students {
		row := []string{s.EnrollmentNo, s.Name}
		for _, d := range dates {
			status := "Absent"
			if matrix[[2]string{s.StudentID, d.Format("2006-01-02")}] {
				status = "Present"
			}
			row = append(row, status)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
