package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/pkg/utils"
)

// ExemptPaths are never admission-controlled: health probes, the read-only
// status endpoint and docs.
var ExemptPaths = []string{"/healthz", "/api/status", "/docs"}

// RateLimit gates request-style endpoints through the shared admission
// controller. Allowed requests carry X-RateLimit-* headers; denials answer
// 429 with an exact Retry-After.
func RateLimit(limiter *admission.Limiter, exempt []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range exempt {
				if r.URL.Path == path || strings.HasPrefix(r.URL.Path, path+"/") {
					next.ServeHTTP(w, r)
					return
				}
			}

			id := admission.ResolveClientID("", r)
			decision := limiter.CheckAndConsume(id.Key)

			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				utils.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
