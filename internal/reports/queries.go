package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Reporting reads are derived views over the attendance ledger grouped by
// UTC calendar date. Nothing here is separately stored state.

func classDates(ctx context.Context, scope string) ([]time.Time, error) {
	query := `
		SELECT DISTINCT DATE(start_time AT TIME ZONE 'UTC') AS class_date
		FROM attendance.sessions
		WHERE scope = $1
		ORDER BY class_date DESC
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, scope).Rows()
	if err != nil {
		return nil, fmt.Errorf("class dates query failed: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan class date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func sessionIDsByDate(ctx context.Context, scope string, date time.Time) ([]string, error) {
	query := `
		SELECT session_id
		FROM attendance.sessions
		WHERE scope = $1 AND DATE(start_time AT TIME ZONE 'UTC') = $2
		ORDER BY start_time ASC
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, scope, date.Format("2006-01-02")).Rows()
	if err != nil {
		return nil, fmt.Errorf("sessions by date query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func presentStudentIDs(ctx context.Context, sessionIDs []string) (map[string]struct{}, error) {
	present := make(map[string]struct{})
	if len(sessionIDs) == 0 {
		return present, nil
	}

	query := `
		SELECT DISTINCT student_id
		FROM attendance.records
		WHERE session_id = ANY($1)
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, pq.Array(sessionIDs)).Rows()
	if err != nil {
		return nil, fmt.Errorf("present students query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student id: %w", err)
		}
		present[id] = struct{}{}
	}
	return present, nil
}

// presenceMatrix maps (student_id, date string) to presence across the whole
// scope history, for the CSV export.
func presenceMatrix(ctx context.Context, scope string) (map[[2]string]bool, error) {
	query := `
		SELECT ar.student_id, DATE(s.start_time AT TIME ZONE 'UTC') AS session_date
		FROM attendance.records ar
		JOIN attendance.sessions s ON ar.session_id = s.session_id
		WHERE s.scope = $1
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, scope).Rows()
	if err != nil {
		return nil, fmt.Errorf("presence matrix query failed: %w", err)
	}
	defer rows.Close()

	matrix := make(map[[2]string]bool)
	for rows.Next() {
		var studentID string
		var date time.Time
		if err := rows.Scan(&studentID, &date); err != nil {
			return nil, fmt.Errorf("scan presence row: %w", err)
		}
		matrix[[2]string{studentID, date.Format("2006-01-02")}] = true
	}
	return matrix, nil
}

// removeMarks deletes a student's records across the given sessions: the
// administrative "flip to absent" path.
func removeMarks(ctx context.Context, studentID string, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	err := db.DB.WithContext(ctx).Exec(
		`DELETE FROM attendance.records WHERE student_id = $1 AND session_id = ANY($2)`,
		studentID, pq.Array(sessionIDs),
	).Error
	if err != nil {
		return fmt.Errorf("remove marks: %w", err)
	}
	return nil
}

// purgeDay deletes everything recorded for the given sessions: fingerprints,
// records, then the sessions themselves.
func purgeDay(ctx context.Context, sessionIDs []string) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := pq.Array(sessionIDs)
		if err := tx.Exec(`DELETE FROM attendance.device_fingerprints WHERE session_id = ANY($1)`, ids).Error; err != nil {
			return fmt.Errorf("purge fingerprints: %w", err)
		}
		if err := tx.Exec(`DELETE FROM attendance.records WHERE session_id = ANY($1)`, ids).Error; err != nil {
			return fmt.Errorf("purge records: %w", err)
		}
		if err := tx.Exec(`DELETE FROM attendance.sessions WHERE session_id = ANY($1)`, ids).Error; err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		return nil
	})
}
