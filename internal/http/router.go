package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/attendance"
	"github.com/MrJamesThe3rd/bursar/internal/http/fee"
	"github.com/MrJamesThe3rd/bursar/internal/http/respond"
)

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	Timeout            time.Duration
}

func New(
	opts Options,
	verifier *auth.Verifier,
	feesV1 *fee.Handler,
	attendanceV1 *attendance.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(rateLimit(opts.RateLimitPerMinute))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Route("/fees", feesV1.Routes)

		r.Route("/attendance", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			attendanceV1.Routes(r)
		})
	})

	return router
}
