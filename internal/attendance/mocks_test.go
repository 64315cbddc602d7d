package attendance_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/attendance"
	"github.com/GeoAttend/GA-Backend/internal/roster"
)

// In-memory doubles for the engine's storage interfaces. They implement the
// same atomicity contracts the Postgres-backed stores provide (mutex instead
// of unique index), so the pipeline and its race behavior are testable
// without a database.

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*attendance.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byID: make(map[string]*attendance.Session)}
}

func (m *memSessions) Get(_ context.Context, sessionID string) (*attendance.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *memSessions) Active(_ context.Context, scope string, now time.Time) (*attendance.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Scope == scope && s.Status == attendance.SessionActive && s.EndTime.After(now) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memSessions) Insert(_ context.Context, session *attendance.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Scope != session.Scope || s.Status != attendance.SessionActive {
			continue
		}
		if s.EndTime.After(session.StartTime) {
			return &attendance.Error{Kind: attendance.KindConflict, Message: "An active session already exists."}
		}
		// Lazy sweep of the expired slot, like the store transaction does.
		s.Status = attendance.SessionEnded
	}
	copied := *session
	m.byID[session.SessionID] = &copied
	return nil
}

func (m *memSessions) End(_ context.Context, sessionID string, now time.Time) (*attendance.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[sessionID]
	if !ok {
		return nil, &attendance.Error{Kind: attendance.KindNotFound, Message: "Session not found."}
	}
	if s.Status == attendance.SessionActive {
		s.Status = attendance.SessionEnded
		s.EndedAt = &now
	}
	copied := *s
	return &copied, nil
}

type recordKey struct{ sessionID, studentID string }
type deviceKey struct{ sessionID, fingerprint string }

type memLedger struct {
	mu      sync.Mutex
	records map[recordKey]attendance.AttendanceRecord
	devices map[deviceKey]string
}

func newMemLedger() *memLedger {
	return &memLedger{
		records: make(map[recordKey]attendance.AttendanceRecord),
		devices: make(map[deviceKey]string),
	}
}

func (m *memLedger) TryInsert(_ context.Context, rec *attendance.AttendanceRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{rec.SessionID, rec.StudentID}
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = *rec
	return true, nil
}

func (m *memLedger) AlreadyMarked(_ context.Context, sessionID, studentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.records[recordKey{sessionID, studentID}]
	return exists, nil
}

func (m *memLedger) DeviceHolder(_ context.Context, sessionID, fingerprint string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	holder, ok := m.devices[deviceKey{sessionID, fingerprint}]
	return holder, ok, nil
}

func (m *memLedger) Commit(_ context.Context, rec *attendance.AttendanceRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{rec.SessionID, rec.StudentID}
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = *rec
	if rec.DeviceSignal != "" {
		dk := deviceKey{rec.SessionID, rec.DeviceSignal}
		if _, exists := m.devices[dk]; !exists {
			m.devices[dk] = rec.StudentID
		}
	}
	return true, nil
}

func (m *memLedger) ListBySession(_ context.Context, sessionID string) ([]attendance.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.AttendanceRecord
	for key, rec := range m.records {
		if key.sessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memLedger) ListByDate(_ context.Context, date time.Time) ([]attendance.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := date.UTC().Format("2006-01-02")
	var out []attendance.AttendanceRecord
	for _, rec := range m.records {
		if rec.MarkedAt.UTC().Format("2006-01-02") == day {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memLedger) ListPresent(_ context.Context, sessionID string) ([]attendance.PresentStudent, error) {
	records, _ := m.ListBySession(nil, sessionID)
	out := make([]attendance.PresentStudent, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.PresentStudent{
			MarkedAt:   rec.MarkedAt,
			MarkMethod: rec.MarkMethod,
		})
	}
	return out, nil
}

type memDirectory struct {
	byEnrollment map[string]*roster.Student
}

func newMemDirectory(students ...*roster.Student) *memDirectory {
	m := &memDirectory{byEnrollment: make(map[string]*roster.Student)}
	for _, s := range students {
		m.byEnrollment[s.EnrollmentNo] = s
	}
	return m
}

func (m *memDirectory) FindByEnrollment(_ context.Context, enrollmentNo string) (*roster.Student, error) {
	normalized := strings.ToUpper(strings.TrimSpace(enrollmentNo))
	s, ok := m.byEnrollment[normalized]
	if !ok {
		return nil, nil
	}
	return s, nil
}
