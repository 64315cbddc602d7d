package attendance

import (
	"net/http"

	"github.com/GeoAttend/GA-Backend/internal/auth"
	"github.com/GeoAttend/GA-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Public: the student page polls these.
	r.Get("/sessions/active", ActiveSessionHandler)
	r.Get("/sessions/{sessionID}/present", PresentStudentsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(claimRatePerSecond, claimRateBurst))
		r.Post("/claims", SubmitClaimHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.ControllerMiddleware(sessionFetcher))
		r.Post("/sessions/start", StartSessionHandler)
		r.Post("/sessions/{sessionID}/end", EndSessionHandler)
		r.Post("/manual", ManualMarkHandler)
	})

	return r
}
