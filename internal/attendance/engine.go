package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/roster"
)

// StudentDirectory is the identity collaborator. (nil, nil) means no such
// student; a non-nil error is a storage fault.
type StudentDirectory interface {
	FindByEnrollment(ctx context.Context, enrollmentNo string) (*roster.Student, error)
}

// Claim is a single attendance submission: identity + position + device
// signal. The engine receives exactly one (lat, lon, accuracy) triple per
// attempt; however many GPS refinement rounds the client ran is its business.
type Claim struct {
	EnrollmentNo   string
	SessionID      string
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	DeviceSignal   string
}

// Result reports a successful mark.
type Result struct {
	StudentID      string
	StudentName    string
	MarkedAt       time.Time
	DistanceMeters float64
	MarkMethod     MarkMethod
}

// Engine runs the admission decision pipeline. Every dependency is an
// interface so the pipeline is testable without Postgres; the one guarantee
// it cannot provide itself is Ledger.Commit atomicity on the
// (session, student) key, which the store supplies.
type Engine struct {
	Sessions SessionStore
	Records  Ledger
	Students StudentDirectory
	Now      Clock
}

// SubmitAttendance decides one claim. Each stage fails fast with a distinct
// *Error kind; infrastructure faults come back as plain wrapped errors and
// are safe to retry with the same claim (the commit is idempotent).
func (e *Engine) SubmitAttendance(ctx context.Context, claim Claim) (*Result, error) {
	now := e.Now()

	// Stage 1: resolve the student.
	student, err := e.Students.FindByEnrollment(ctx, claim.EnrollmentNo)
	if err != nil {
		return nil, fmt.Errorf("resolve student: %w", err)
	}
	if student == nil {
		return nil, &Error{Kind: KindUnknownStudent, Message: "Enrollment number not found."}
	}

	// Stage 2: resolve the session. Missing or explicitly ended both read
	// as "nothing to mark against".
	session, err := e.Sessions.Get(ctx, claim.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if session == nil || session.Status == SessionEnded {
		return nil, &Error{Kind: KindNoActiveSession, Message: "Attendance session not found or already ended."}
	}

	// Stage 3: the window is re-validated at submission time, never at
	// request start. A session that expired while the claim was in flight
	// rejects here.
	if now.Before(session.StartTime) || now.After(session.EndTime) {
		return nil, &Error{Kind: KindSessionNotActive, Message: "Attendance session has expired."}
	}

	// Stage 4: friendly-path duplicate check. The race-proof version is the
	// conflict clause on commit; this one just answers fast.
	marked, err := e.Records.AlreadyMarked(ctx, session.SessionID, student.StudentID)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, &Error{Kind: KindAlreadyMarked, Message: "You have already marked attendance for this session."}
	}

	// Stage 5: one device, one student, per session.
	if claim.DeviceSignal != "" {
		holder, found, err := e.Records.DeviceHolder(ctx, session.SessionID, claim.DeviceSignal)
		if err != nil {
			return nil, err
		}
		if found && holder != student.StudentID {
			return nil, &Error{Kind: KindDeviceAlreadyUsed, Message: "This device has already been used by another student."}
		}
	}

	// Stage 6: geofence, boundary inclusive.
	distance := DistanceMeters(claim.Latitude, claim.Longitude, session.CenterLat, session.CenterLon)
	if distance > session.RadiusMeters {
		return nil, &Error{
			Kind: KindOutsideGeofence,
			Message: fmt.Sprintf("You are %.0fm away. Please move within the %.0fm radius.",
				distance, session.RadiusMeters),
			DistanceMeters: distance,
		}
	}

	// Stage 7: atomic commit. A concurrent duplicate that slipped past
	// stage 4 loses here and gets the same AlreadyMarked outcome.
	rec := &AttendanceRecord{
		SessionID:      session.SessionID,
		StudentID:      student.StudentID,
		MarkedAt:       now,
		Latitude:       claim.Latitude,
		Longitude:      claim.Longitude,
		AccuracyMeters: claim.AccuracyMeters,
		DeviceSignal:   claim.DeviceSignal,
		MarkMethod:     MarkGeolocation,
	}
	inserted, err := e.Records.Commit(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, &Error{Kind: KindAlreadyMarked, Message: "You have already marked attendance for this session."}
	}

	return &Result{
		StudentID:      student.StudentID,
		StudentName:    student.Name,
		MarkedAt:       now,
		DistanceMeters: distance,
		MarkMethod:     MarkGeolocation,
	}, nil
}

// MarkPresent is the manual override: the controller asserts presence, so
// geolocation and device checks are skipped, but uniqueness still holds —
// one mark per (session, student) no matter which path wrote first.
func (e *Engine) MarkPresent(ctx context.Context, sessionID, studentID, controllerID string) (*Result, error) {
	now := e.Now()

	session, err := e.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if session == nil {
		return nil, &Error{Kind: KindNotFound, Message: "Session not found."}
	}

	rec := &AttendanceRecord{
		SessionID:  session.SessionID,
		StudentID:  studentID,
		MarkedAt:   now,
		MarkMethod: MarkManual,
	}
	inserted, err := e.Records.TryInsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, &Error{Kind: KindAlreadyMarked, Message: "Student already marked present."}
	}

	return &Result{
		StudentID:  studentID,
		MarkedAt:   now,
		MarkMethod: MarkManual,
	}, nil
}
