package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore owns the keyed active-session slot. Insert is atomic with
// respect to the at-most-one-Active-per-scope invariant: a partial unique
// index on (scope) WHERE status='active' makes concurrent starts race at
// the database, and the loser surfaces as KindConflict.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Active(ctx context.Context, scope string, now time.Time) (*Session, error)
	Insert(ctx context.Context, session *Session) error
	End(ctx context.Context, sessionID string, now time.Time) (*Session, error)
}

// Ledger owns attendance records. TryInsert is the sole mutation path on the
// hot path and is atomic on the (session_id, student_id) key; every
// duplicate-prevention guarantee in the system reduces to it.
type Ledger interface {
	TryInsert(ctx context.Context, rec *AttendanceRecord) (bool, error)
	AlreadyMarked(ctx context.Context, sessionID, studentID string) (bool, error)
	DeviceHolder(ctx context.Context, sessionID, fingerprint string) (string, bool, error)
	Commit(ctx context.Context, rec *AttendanceRecord) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]AttendanceRecord, error)
	ListByDate(ctx context.Context, date time.Time) ([]AttendanceRecord, error)
	ListPresent(ctx context.Context, sessionID string) ([]PresentStudent, error)
}

// PresentStudent is the roster-joined view of a ledger entry, shaped for the
// live "who is marked" listing.
type PresentStudent struct {
	EnrollmentNo string     `json:"enrollment_no"`
	Name         string     `json:"name"`
	MarkedAt     time.Time  `json:"marked_at"`
	MarkMethod   MarkMethod `json:"mark_method"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// SQLSTATE 23505 = unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type GormSessionStore struct{}

func (GormSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := db.DB.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (GormSessionStore) Active(ctx context.Context, scope string, now time.Time) (*Session, error) {
	var session Session
	err := db.DB.WithContext(ctx).
		Where("scope = ? AND status = ? AND end_time > ?", scope, SessionActive, now).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return &session, nil
}

func (GormSessionStore) Insert(ctx context.Context, session *Session) error {
	err := db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lazily close out expired Active rows first, otherwise the partial
		// unique index would block a new start on a long-dead session.
		err := tx.Model(&Session{}).
			Where("scope = ? AND status = ? AND end_time <= ?", session.Scope, SessionActive, session.StartTime).
			Updates(map[string]interface{}{"status": SessionEnded, "ended_at": session.StartTime}).Error
		if err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if isUniqueViolation(err) {
		return &Error{Kind: KindConflict, Message: "An active session already exists."}
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (GormSessionStore) End(ctx context.Context, sessionID string, now time.Time) (*Session, error) {
	var session Session
	err := db.DB.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Message: "Session not found."}
	}
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	// Ending a session that already ended (explicitly or by expiry) is a
	// no-op success, not an error.
	if session.Status == SessionActive {
		err = db.DB.WithContext(ctx).Model(&session).
			Updates(map[string]interface{}{"status": SessionEnded, "ended_at": now}).Error
		if err != nil {
			return nil, fmt.Errorf("end session: %w", err)
		}
		session.Status = SessionEnded
		session.EndedAt = &now
	}
	return &session, nil
}

type GormLedger struct{}

func (GormLedger) TryInsert(ctx context.Context, rec *AttendanceRecord) (bool, error) {
	res := db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return false, fmt.Errorf("insert attendance record: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (GormLedger) AlreadyMarked(ctx context.Context, sessionID, studentID string) (bool, error) {
	var count int64
	err := db.DB.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return count > 0, nil
}

func (GormLedger) DeviceHolder(ctx context.Context, sessionID, fingerprint string) (string, bool, error) {
	var fp DeviceFingerprint
	err := db.DB.WithContext(ctx).
		First(&fp, "session_id = ? AND fingerprint = ?", sessionID, fingerprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("device check: %w", err)
	}
	return fp.StudentID, true, nil
}

// Commit inserts the record and its device fingerprint together. The record
// insert is the conflict-deciding one; the fingerprint insert is best-effort
// bookkeeping and silently keeps the first writer on conflict.
func (GormLedger) Commit(ctx context.Context, rec *AttendanceRecord) (bool, error) {
	inserted := false
	err := db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0
		if !inserted || rec.DeviceSignal == "" {
			return nil
		}
		fp := DeviceFingerprint{
			SessionID:   rec.SessionID,
			Fingerprint: rec.DeviceSignal,
			StudentID:   rec.StudentID,
			SeenAt:      rec.MarkedAt,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fp).Error
	})
	if err != nil {
		return false, fmt.Errorf("commit attendance record: %w", err)
	}
	return inserted, nil
}

func (GormLedger) ListBySession(ctx context.Context, sessionID string) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := db.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("marked_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (GormLedger) ListByDate(ctx context.Context, date time.Time) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := db.DB.WithContext(ctx).
		Where("DATE(marked_at AT TIME ZONE 'UTC') = ?", date.UTC().Format("2006-01-02")).
		Order("marked_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list records by date: %w", err)
	}
	return records, nil
}

func (GormLedger) ListPresent(ctx context.Context, sessionID string) ([]PresentStudent, error) {
	query := `
		SELECT s.enrollment_no, s.name, ar.marked_at, ar.mark_method
		FROM attendance.records ar
		JOIN roster.students s ON ar.student_id = s.student_id
		WHERE ar.session_id = $1
		ORDER BY s.enrollment_no ASC
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, sessionID).Rows()
	if err != nil {
		return nil, fmt.Errorf("present students query failed: %w", err)
	}
	defer rows.Close()

	var present []PresentStudent
	for rows.Next() {
		var p PresentStudent
		if err := rows.Scan(&p.EnrollmentNo, &p.Name, &p.MarkedAt, &p.MarkMethod); err != nil {
			return nil, fmt.Errorf("scan present student: %w", err)
		}
		present = append(present, p)
	}

	return present, nil
}
