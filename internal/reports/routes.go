package reports

import (
	"net/http"

	"github.com/GeoAttend/GA-Backend/internal/auth"
	"github.com/GeoAttend/GA-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Public: the student page shows today's list after the window closes.
	r.Get("/today", TodayPresentHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.ControllerMiddleware(sessionFetcher))
		r.Get("/daily", DailyGridHandler)
		r.Get("/export.csv", ExportCSVHandler)
		r.Get("/days", EditableDaysHandler)
		r.Get("/days/{date}/students", DayStudentsHandler)
		r.Post("/days/{date}", UpdateDayHandler)
		r.Delete("/days/{date}", DeleteDayHandler)
	})

	return r
}
