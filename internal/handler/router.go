package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/prepdeck/interview-coach/internal/handler/interview"
	middlewarePkg "github.com/prepdeck/interview-coach/internal/middleware"
	interviewService "github.com/prepdeck/interview-coach/internal/service/interview"
	"github.com/prepdeck/interview-coach/internal/store"
	"github.com/prepdeck/interview-coach/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(svc *interviewService.Service, sessions store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		interviewHandler.New(svc, sessions).RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
