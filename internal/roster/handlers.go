package roster

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StudentNameHandler backs the student form's name preview: type an
// enrollment number, see whose it is before submitting.
func StudentNameHandler(w http.ResponseWriter, r *http.Request) {
	enrollmentNo := chi.URLParam(r, "enrollmentNo")

	student, err := Finder{}.FindByEnrollment(r.Context(), enrollmentNo)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if student == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"name":    "Not Found",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"name":    student.Name,
	})
}
