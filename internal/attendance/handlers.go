package attendance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// envelope is the uniform JSON reply: a machine flag, a human message, and a
// category the frontend uses both for branching and for styling flashes.
type envelope struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Category string      `json:"category"`
	Kind     Kind        `json:"kind,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func statusForKind(kind Kind) int {
	switch kind {
	case KindUnknownStudent, KindNotFound:
		return http.StatusNotFound
	case KindAlreadyMarked, KindConflict:
		return http.StatusConflict
	case KindDeviceAlreadyUsed, KindOutsideGeofence:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func categoryForKind(kind Kind) string {
	// AlreadyMarked is informational for the student, not a failure alarm.
	if kind == KindAlreadyMarked {
		return "warning"
	}
	return "danger"
}

// writeDomainError renders a pipeline rejection; anything that isn't a
// domain *Error is a storage fault and becomes a 503.
func writeDomainError(w http.ResponseWriter, err error) {
	de := AsDomain(err)
	if de == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			Success:  false,
			Message:  "A server error occurred.",
			Category: "error",
		})
		return
	}

	env := envelope{
		Success:  false,
		Message:  de.Message,
		Category: categoryForKind(de.Kind),
		Kind:     de.Kind,
	}
	if de.Kind == KindOutsideGeofence {
		env.Data = map[string]float64{"distance_meters": de.DistanceMeters}
	}
	writeJSON(w, statusForKind(de.Kind), env)
}

type sessionView struct {
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type startSessionRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	controllerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Location data not provided.", Category: "error",
		})
		return
	}
	if err := validate.Struct(input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Invalid coordinates.", Category: "error",
		})
		return
	}

	session, err := lifecycle.Start(r.Context(), controllerID, input.Latitude, input.Longitude)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success:  true,
		Message:  fmt.Sprintf("New %s session started!", lifecycle.Policy.SessionDuration),
		Category: "success",
		Data: sessionView{
			SessionID: session.SessionID,
			StartTime: session.StartTime,
			EndTime:   session.EndTime,
		},
	})
}

func EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	controllerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	session, err := engine.Sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Only the controller who opened a session may end it.
	if session != nil && session.ControllerID != controllerID {
		writeJSON(w, http.StatusForbidden, envelope{
			Success: false, Message: "Session belongs to another controller.", Category: "danger",
		})
		return
	}

	if _, err := lifecycle.End(r.Context(), sessionID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true, Message: "Session ended.", Category: "success",
	})
}

func ActiveSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := lifecycle.Active(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if session == nil {
		writeJSON(w, http.StatusOK, envelope{
			Success: true, Message: "No active session.", Category: "info",
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Message:  "Session in progress.",
		Category: "success",
		Data: sessionView{
			SessionID: session.SessionID,
			StartTime: session.StartTime,
			EndTime:   session.EndTime,
		},
	})
}

type claimRequest struct {
	EnrollmentNo   string  `json:"enrollment_no" validate:"required"`
	SessionID      string  `json:"session_id" validate:"required,uuid"`
	Latitude       float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude      float64 `json:"longitude" validate:"gte=-180,lte=180"`
	AccuracyMeters float64 `json:"accuracy" validate:"gte=0"`
	DeviceSignal   string  `json:"device_signal" validate:"required"`
}

func SubmitClaimHandler(w http.ResponseWriter, r *http.Request) {
	var input claimRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Missing data from client.", Category: "error",
		})
		return
	}
	if err := validate.Struct(input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Missing data from client.", Category: "error",
		})
		return
	}

	// Server-side backstop of the client's high-accuracy re-read loop: a fix
	// looser than the policy limit can't meaningfully place anyone inside an
	// 80 m fence.
	if input.AccuracyMeters > accuracyLimitM {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success:  false,
			Message:  fmt.Sprintf("Location accuracy %.0fm is too low. Please retry with GPS enabled.", input.AccuracyMeters),
			Category: "warning",
		})
		return
	}

	result, err := engine.SubmitAttendance(r.Context(), Claim{
		EnrollmentNo:   input.EnrollmentNo,
		SessionID:      input.SessionID,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		AccuracyMeters: input.AccuracyMeters,
		DeviceSignal:   input.DeviceSignal,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Message:  "Attendance marked successfully!",
		Category: "success",
		Data: map[string]interface{}{
			"student_name": result.StudentName,
			"marked_at":    result.MarkedAt,
		},
	})
}

type manualMarkRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required"`
}

func ManualMarkHandler(w http.ResponseWriter, r *http.Request) {
	controllerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input manualMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Missing data.", Category: "error",
		})
		return
	}
	if err := validate.Struct(input); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Message: "Missing data.", Category: "error",
		})
		return
	}

	result, err := engine.MarkPresent(r.Context(), input.SessionID, input.StudentID, controllerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Message:  "Student marked present.",
		Category: "success",
		Data:     map[string]interface{}{"marked_at": result.MarkedAt},
	})
}

func PresentStudentsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	present, err := engine.Records.ListPresent(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if present == nil {
		present = []PresentStudent{}
	}

	writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Message:  fmt.Sprintf("%d students present.", len(present)),
		Category: "info",
		Data:     present,
	})
}
