package roster

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/students/{enrollmentNo}/name", StudentNameHandler)

	return r
}
