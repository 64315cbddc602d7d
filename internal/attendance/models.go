package attendance

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

type MarkMethod string

const (
	MarkGeolocation MarkMethod = "geolocation"
	MarkManual      MarkMethod = "manual"
)

// Session is one time-bounded attendance window around a geofence. EndTime
// is fixed at creation and never extended; expiry is computed from it at
// read time rather than requiring a timer to flip the row.
type Session struct {
	SessionID    string        `gorm:"primaryKey" json:"session_id"`
	Scope        string        `gorm:"index;not null" json:"scope"`
	CenterLat    float64       `gorm:"not null" json:"center_lat"`
	CenterLon    float64       `gorm:"not null" json:"center_lon"`
	RadiusMeters float64       `gorm:"not null" json:"radius_meters"`
	StartTime    time.Time     `gorm:"not null;index" json:"start_time"`
	EndTime      time.Time     `gorm:"not null" json:"end_time"`
	Status       SessionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	ControllerID string        `gorm:"not null" json:"-"`
	EndedAt      *time.Time    `json:"-"`
}

func (Session) TableName() string { return "attendance.sessions" }

// StatusAt applies logical expiry: a stored-Active session whose window has
// passed reads as Ended without anyone having rewritten the row.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	if s.Status == SessionEnded || now.After(s.EndTime) {
		return SessionEnded
	}
	return s.Status
}

// OpenAt reports whether a claim arriving at now falls inside the session's
// accepting window.
func (s *Session) OpenAt(now time.Time) bool {
	return s.Status == SessionActive && !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// AttendanceRecord is one accepted presence mark. The composite primary key
// (session_id, student_id) is the uniqueness invariant everything else
// leans on: a student is marked at most once per session.
type AttendanceRecord struct {
	SessionID      string     `gorm:"primaryKey" json:"session_id"`
	StudentID      string     `gorm:"primaryKey" json:"student_id"`
	MarkedAt       time.Time  `gorm:"not null" json:"marked_at"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	DeviceSignal   string     `json:"-"`
	MarkMethod     MarkMethod `gorm:"type:text;not null" json:"mark_method"`
}

func (AttendanceRecord) TableName() string { return "attendance.records" }

// DeviceFingerprint pins an opaque client device signal to the first student
// who used it within a session. Best-effort deterrent only: signals are
// client-supplied and trivially forgeable, so this is never treated as a
// security boundary. Scoped per session so a shared kiosk stays usable
// across different sessions.
type DeviceFingerprint struct {
	SessionID   string    `gorm:"primaryKey" json:"session_id"`
	Fingerprint string    `gorm:"primaryKey" json:"-"`
	StudentID   string    `gorm:"not null" json:"student_id"`
	SeenAt      time.Time `json:"seen_at"`
}

func (DeviceFingerprint) TableName() string { return "attendance.device_fingerprints" }
