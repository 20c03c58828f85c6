package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/internal/service/registry"
	"github.com/avelier/decoychat/pkg/utils"
)

// Handler exposes the read-only service status endpoint.
type Handler struct {
	registry *registry.Registry
	limiter  *admission.Limiter
}

// New wires the status handler.
func New(reg *registry.Registry, limiter *admission.Limiter) *Handler {
	return &Handler{registry: reg, limiter: limiter}
}

// RegisterRoutes mounts the status endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.handleStatus)
}

type statusResponse struct {
	Operational    bool `json:"operational"`
	LiveSessions   int  `json:"liveSessions"`
	MaxSessions    int  `json:"maxSessions"`
	LimiterBuckets int  `json:"limiterBuckets"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	live := h.registry.Count()
	max := h.registry.MaxSessions()

	utils.RespondJSON(w, http.StatusOK, statusResponse{
		Operational:    live < max,
		LiveSessions:   live,
		MaxSessions:    max,
		LimiterBuckets: h.limiter.Stats().ActiveBuckets,
	})
}
