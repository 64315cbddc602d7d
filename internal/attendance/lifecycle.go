package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock is injectable time, so tests can pin "now".
type Clock func() time.Time

// Policy is the per-deployment attendance policy: which scope this instance
// serves, how wide the fence is, and how long a window stays open.
type Policy struct {
	Scope           string
	RadiusMeters    float64
	SessionDuration time.Duration
}

// Lifecycle starts and ends sessions. The geofence center is wherever the
// controller is standing when they press start; the end time is fixed then
// and never extended.
type Lifecycle struct {
	Sessions SessionStore
	Policy   Policy
	Now      Clock
}

// Start opens a new session centered on the controller's position. Returns
// KindConflict when the scope already has a live session.
func (l *Lifecycle) Start(ctx context.Context, controllerID string, lat, lon float64) (*Session, error) {
	now := l.Now()
	session := &Session{
		SessionID:    uuid.NewString(),
		Scope:        l.Policy.Scope,
		CenterLat:    lat,
		CenterLon:    lon,
		RadiusMeters: l.Policy.RadiusMeters,
		StartTime:    now,
		EndTime:      now.Add(l.Policy.SessionDuration),
		Status:       SessionActive,
		ControllerID: controllerID,
	}
	if err := l.Sessions.Insert(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// End closes a session. Idempotent: ending an already-ended or expired
// session succeeds without touching the row again.
func (l *Lifecycle) End(ctx context.Context, sessionID string) (*Session, error) {
	return l.Sessions.End(ctx, sessionID, l.Now())
}

// Active returns the scope's live session, or nil when none is open.
// Expired-but-unswept rows are filtered by the store query, so callers never
// see a logically dead session here.
func (l *Lifecycle) Active(ctx context.Context) (*Session, error) {
	return l.Sessions.Active(ctx, l.Policy.Scope, l.Now())
}
