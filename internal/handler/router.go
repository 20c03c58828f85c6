package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/avelier/decoychat/internal/handler/preview"
	"github.com/avelier/decoychat/internal/handler/status"
	"github.com/avelier/decoychat/internal/handler/ws"
	middlewarePkg "github.com/avelier/decoychat/internal/middleware"
	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(wsHandler *ws.Handler, statusHandler *status.Handler, previewHandler *preview.Handler, limiter *admission.Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	// /ws runs its own admission check with credential-aware identity; the
	// generic middleware skipping it avoids charging the handshake twice.
	r.Use(middlewarePkg.RateLimit(limiter, append([]string{"/ws"}, middlewarePkg.ExemptPaths...)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	wsHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		statusHandler.RegisterRoutes(api)
		previewHandler.RegisterRoutes(api)
	})

	return r
}
