package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/attendance"
)

func newLifecycle(sessions *memSessions, now *time.Time) *attendance.Lifecycle {
	return &attendance.Lifecycle{
		Sessions: sessions,
		Policy: attendance.Policy{
			Scope:           "BSC-ANTHRO",
			RadiusMeters:    80,
			SessionDuration: 5 * time.Minute,
		},
		Now: func() time.Time { return *now },
	}
}

func TestLifecycle_StartCapturesControllerPosition(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)

	session, err := lc.Start(context.Background(), "controller-1", centerLat, centerLon)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if session.CenterLat != centerLat || session.CenterLon != centerLon {
		t.Errorf("geofence center = (%f, %f), want controller position", session.CenterLat, session.CenterLon)
	}
	if session.RadiusMeters != 80 {
		t.Errorf("radius = %f, want policy value 80", session.RadiusMeters)
	}
	if !session.EndTime.Equal(baseTime.Add(5 * time.Minute)) {
		t.Errorf("end_time = %v, want start + 5m", session.EndTime)
	}
	if session.Status != attendance.SessionActive {
		t.Errorf("status = %s, want active", session.Status)
	}
}

func TestLifecycle_DoubleStartConflicts(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)
	ctx := context.Background()

	if _, err := lc.Start(ctx, "controller-1", centerLat, centerLon); err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err := lc.Start(ctx, "controller-1", centerLat, centerLon)
	wantKind(t, err, attendance.KindConflict)
}

func TestLifecycle_StartAfterExplicitEnd(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)
	ctx := context.Background()

	first, err := lc.Start(ctx, "controller-1", centerLat, centerLon)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := lc.End(ctx, first.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, err := lc.Start(ctx, "controller-1", centerLat, centerLon); err != nil {
		t.Fatalf("start after end should succeed: %v", err)
	}
}

func TestLifecycle_StartAfterNaturalExpiry(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)
	ctx := context.Background()

	if _, err := lc.Start(ctx, "controller-1", centerLat, centerLon); err != nil {
		t.Fatalf("first start: %v", err)
	}

	// Nobody called End; the window just lapsed.
	now = baseTime.Add(6 * time.Minute)

	if _, err := lc.Start(ctx, "controller-1", centerLat, centerLon); err != nil {
		t.Fatalf("start after expiry should succeed: %v", err)
	}
}

func TestLifecycle_EndIsIdempotent(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)
	ctx := context.Background()

	session, err := lc.Start(ctx, "controller-1", centerLat, centerLon)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 2; i++ {
		ended, err := lc.End(ctx, session.SessionID)
		if err != nil {
			t.Fatalf("end #%d: %v", i+1, err)
		}
		if ended.Status != attendance.SessionEnded {
			t.Errorf("end #%d: status = %s, want ended", i+1, ended.Status)
		}
	}
}

func TestLifecycle_EndUnknownSession(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)

	_, err := lc.End(context.Background(), "missing-session")
	wantKind(t, err, attendance.KindNotFound)
}

func TestLifecycle_ActiveFiltersExpired(t *testing.T) {
	now := baseTime
	lc := newLifecycle(newMemSessions(), &now)
	ctx := context.Background()

	started, err := lc.Start(ctx, "controller-1", centerLat, centerLon)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	active, err := lc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.SessionID != started.SessionID {
		t.Fatalf("active = %v, want the started session", active)
	}

	now = baseTime.Add(6 * time.Minute)

	active, err = lc.Active(ctx)
	if err != nil {
		t.Fatalf("active after expiry: %v", err)
	}
	if active != nil {
		t.Errorf("expired session still reads as active: %+v", active)
	}
}

func TestSessionStatusAt_LogicalExpiry(t *testing.T) {
	session := attendance.Session{
		StartTime: baseTime,
		EndTime:   baseTime.Add(5 * time.Minute),
		Status:    attendance.SessionActive,
	}

	if got := session.StatusAt(baseTime.Add(time.Minute)); got != attendance.SessionActive {
		t.Errorf("status within window = %s, want active", got)
	}
	if got := session.StatusAt(baseTime.Add(10 * time.Minute)); got != attendance.SessionEnded {
		t.Errorf("status past end_time = %s, want ended (logical expiry)", got)
	}

	session.Status = attendance.SessionEnded
	if got := session.StatusAt(baseTime.Add(time.Minute)); got != attendance.SessionEnded {
		t.Errorf("explicitly ended session reads %s, want ended", got)
	}
}
