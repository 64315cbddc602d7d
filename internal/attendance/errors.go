package attendance

import "errors"

// Kind classifies every expected rejection the verification pipeline can
// produce. Handlers branch on it for status codes; clients branch on it for
// display. Storage faults are ordinary wrapped errors, never a Kind.
type Kind string

const (
	KindUnknownStudent    Kind = "unknown_student"
	KindNoActiveSession   Kind = "no_active_session"
	KindSessionNotActive  Kind = "session_not_active"
	KindAlreadyMarked     Kind = "already_marked"
	KindDeviceAlreadyUsed Kind = "device_already_used"
	KindOutsideGeofence   Kind = "outside_geofence"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
)

// Error is a domain rejection: terminal for the request, safe to retry with
// the same claim, and always carrying a human-readable reason.
type Error struct {
	Kind    Kind
	Message string

	// DistanceMeters is set for KindOutsideGeofence so the client can tell
	// the user how far off they are instead of an opaque denial.
	DistanceMeters float64
}

func (e *Error) Error() string { return e.Message }

// AsDomain unwraps err into a domain *Error, or returns nil for
// infrastructure faults.
func AsDomain(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	de := AsDomain(err)
	return de != nil && de.Kind == kind
}
