package reports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GeoAttend/GA-Backend/internal/attendance"
	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/GeoAttend/GA-Backend/internal/roster"
	"github.com/GeoAttend/GA-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func listRoster(r *http.Request) ([]roster.Student, error) {
	var students []roster.Student
	err := db.DB.WithContext(r.Context()).
		Order("enrollment_no ASC").
		Find(&students).Error
	return students, err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false, "message": msg, "category": "danger",
	})
}

// dayEntry is one row of the report grid: a class date plus each student's
// status in roster order.
type dayEntry struct {
	Date     string   `json:"date"`
	Editable bool     `json:"is_editable"`
	Statuses []string `json:"statuses"`
}

type dailyGridResponse struct {
	Success  bool             `json:"success"`
	Students []roster.Student `json:"students"`
	Days     []dayEntry       `json:"days"`
}

func DailyGridHandler(w http.ResponseWriter, r *http.Request) {
	students, err := listRoster(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	dates, err := classDates(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	resp := dailyGridResponse{Success: true, Students: students}

	for _, date := range dates {
		sessionIDs, err := sessionIDsByDate(r.Context(), scope, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
			return
		}
		present, err := presentStudentIDs(r.Context(), sessionIDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
			return
		}

		entry := dayEntry{
			Date:     date.Format(dateLayout),
			Editable: today.Sub(date.Truncate(24*time.Hour)) < time.Duration(editWindowDays)*24*time.Hour,
		}
		for _, s := range students {
			if _, ok := present[s.StudentID]; ok {
				entry.Statuses = append(entry.Statuses, "Present")
			} else {
				entry.Statuses = append(entry.Statuses, "Absent")
			}
		}
		resp.Days = append(resp.Days, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	students, err := listRoster(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	dates, err := classDates(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}
	if len(dates) == 0 {
		writeError(w, http.StatusNotFound, "No attendance data to export.")
		return
	}
	// classDates returns newest first; the export reads oldest to newest.
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}

	matrix, err := presenceMatrix(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_attendance.csv"`, scope))
	if err := WriteAttendanceCSV(w, students, dates, matrix); err != nil {
		writeError(w, http.StatusInternalServerError, "CSV write failed: "+err.Error())
	}
}

func EditableDaysHandler(w http.ResponseWriter, r *http.Request) {
	dates, err := classDates(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -editWindowDays)
	var days []string
	for _, d := range dates {
		if d.After(cutoff) {
			days = append(days, d.Format(dateLayout))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true, "days": days,
	})
}

type dayStudent struct {
	StudentID    string `json:"student_id"`
	EnrollmentNo string `json:"enrollment_no"`
	Name         string `json:"name"`
	IsPresent    bool   `json:"is_present"`
}

func DayStudentsHandler(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format provided.")
		return
	}

	students, err := listRoster(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}
	sessionIDs, err := sessionIDsByDate(r.Context(), scope, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}
	present, err := presentStudentIDs(r.Context(), sessionIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	out := make([]dayStudent, 0, len(students))
	for _, s := range students {
		_, isPresent := present[s.StudentID]
		out = append(out, dayStudent{
			StudentID:    s.StudentID,
			EnrollmentNo: s.EnrollmentNo,
			Name:         s.Name,
			IsPresent:    isPresent,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true, "students": out,
	})
}

type updateDayRequest struct {
	StudentID string `json:"student_id"`
	Present   *bool  `json:"present"`
}

// UpdateDayHandler is the administrative after-the-fact edit path. It shares
// the ledger's uniqueness primitive but deliberately bypasses the
// verification pipeline: the controller's word replaces geolocation.
func UpdateDayHandler(w http.ResponseWriter, r *http.Request) {
	controllerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format provided.")
		return
	}

	var input updateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.StudentID == "" || input.Present == nil {
		writeError(w, http.StatusBadRequest, "Missing data.")
		return
	}

	if time.Now().UTC().Sub(date) > time.Duration(editWindowDays)*24*time.Hour {
		writeError(w, http.StatusForbidden,
			fmt.Sprintf("Attendance older than %d days cannot be edited.", editWindowDays))
		return
	}

	sessionIDs, err := sessionIDsByDate(r.Context(), scope, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if !*input.Present {
		if err := removeMarks(r.Context(), input.StudentID, sessionIDs); err != nil {
			writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "message": "Attendance updated.",
		})
		return
	}

	// Marking present on a day with no sessions: record against a
	// zero-length placeholder so the day shows up in reports.
	if len(sessionIDs) == 0 {
		midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		placeholder := attendance.Session{
			SessionID:    uuid.NewString(),
			Scope:        scope,
			StartTime:    midnight,
			EndTime:      midnight,
			Status:       attendance.SessionEnded,
			ControllerID: controllerID,
		}
		if err := db.DB.WithContext(r.Context()).Create(&placeholder).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
			return
		}
		sessionIDs = []string{placeholder.SessionID}
	}

	rec := &attendance.AttendanceRecord{
		SessionID:  sessionIDs[0],
		StudentID:  input.StudentID,
		MarkedAt:   time.Now().UTC(),
		MarkMethod: attendance.MarkManual,
	}
	if _, err := (attendance.GormLedger{}).TryInsert(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true, "message": "Attendance updated.",
	})
}

func DeleteDayHandler(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format provided.")
		return
	}

	sessionIDs, err := sessionIDsByDate(r.Context(), scope, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}
	if len(sessionIDs) == 0 {
		writeError(w, http.StatusNotFound, "No sessions found for this day.")
		return
	}

	if err := purgeDay(r.Context(), sessionIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("All attendance data for %s has been deleted.", date.Format(dateLayout)),
	})
}

// TodayPresentHandler backs the student page once a session closes: who made
// it onto today's list.
func TodayPresentHandler(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC()
	sessionIDs, err := sessionIDsByDate(r.Context(), scope, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}
	present, err := presentStudentIDs(r.Context(), sessionIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	students, err := listRoster(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB error: "+err.Error())
		return
	}

	var out []dayStudent
	for _, s := range students {
		if _, ok := present[s.StudentID]; ok {
			out = append(out, dayStudent{
				StudentID:    s.StudentID,
				EnrollmentNo: s.EnrollmentNo,
				Name:         s.Name,
				IsPresent:    true,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true, "students": out,
	})
}
