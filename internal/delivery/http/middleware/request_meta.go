package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"okapi-care-network/internal/service"
)

// ClientIPMiddleware resolves the caller address once per request. With no
// trusted proxies the peer address is used and X-Forwarded-For is ignored,
// since any client can set it.
type ClientIPMiddleware struct {
	trustedHops int
}

// NewClientIPMiddleware trusts the trustedHops proxies nearest to the server.
func NewClientIPMiddleware(trustedHops int) *ClientIPMiddleware {
	if trustedHops < 0 {
		trustedHops = 0
	}
	return &ClientIPMiddleware{trustedHops: trustedHops}
}

func (m *ClientIPMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientIPKey, m.clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP walks X-Forwarded-For from the right. The peer is the nearest
// trusted proxy and each further trusted proxy appended one entry, so the
// client is the entry trustedHops from the end.
func (m *ClientIPMiddleware) clientIP(r *http.Request) string {
	peer := peerIP(r)
	if m.trustedHops == 0 {
		return peer
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	if len(hops) == 0 {
		return peer
	}

	idx := len(hops) - m.trustedHops
	if idx < 0 {
		idx = 0
	}
	ip := net.ParseIP(hops[idx])
	if ip == nil {
		return peer
	}
	return ip.String()
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP returns the address resolved by ClientIPMiddleware, or the peer
// address when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	return peerIP(r)
}

// ActorFromRequest describes the caller for the audit trail. Anonymous
// requests carry only the client address.
func ActorFromRequest(r *http.Request) service.Actor {
	actor := service.Actor{
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if p, ok := GetPrincipalFromContext(r.Context()); ok {
		userID := p.UserID
		actor.UserID = &userID
		actor.Role = p.Role
		actor.FacilityID = p.FacilityID
	}
	return actor
}
