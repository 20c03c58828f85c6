package admission

import (
	"net"
	"net/http"
	"strings"
)

// Identity is the rate-limit key for a request plus the tier that produced
// it, so operators can tell which signal a quota was charged against.
type Identity struct {
	Key  string
	Tier string // "user", "forwarded", "peer" or "unknown"
}

// ResolveClientID derives the limiter key for a request. Resolution order is
// authenticated user id, then the first forwarded-address entry, then the raw
// transport peer address. First match wins; signals are never combined.
func ResolveClientID(userID string, r *http.Request) Identity {
	if userID != "" {
		return Identity{Key: "user:" + userID, Tier: "user"}
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return Identity{Key: "ip:" + first, Tier: "forwarded"}
		}
	}

	if r.RemoteAddr != "" {
		host := r.RemoteAddr
		if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			host = h
		}
		return Identity{Key: "ip:" + host, Tier: "peer"}
	}

	return Identity{Key: "unknown", Tier: "unknown"}
}
