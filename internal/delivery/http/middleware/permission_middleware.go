package middleware

import (
	"net/http"

	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/internal/service"
	"okapi-care-network/pkg/response"
)

// DecisionObserver receives the outcome of every permission check.
type DecisionObserver interface {
	ObserveDecision(role string, permission rbac.Permission, allowed bool)
}

type PermissionMiddleware struct {
	checker  rbac.Checker
	recorder service.SecurityEventRecorder
	observer DecisionObserver
}

func NewPermissionMiddleware(checker rbac.Checker, recorder service.SecurityEventRecorder, observer DecisionObserver) *PermissionMiddleware {
	return &PermissionMiddleware{
		checker:  checker,
		recorder: recorder,
		observer: observer,
	}
}

// RequirePermission admits callers whose role holds permission. It panics
// when permission is not in the catalog so that a typo fails at route setup.
func (m *PermissionMiddleware) RequirePermission(permission rbac.Permission) func(http.Handler) http.Handler {
	if !permission.Valid() {
		panic("middleware: RequirePermission with " + rbac.ErrUnknownPermission.Error() + " " + string(permission))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			allowed := m.checker.HasPermission(principal.Role, permission)
			if m.observer != nil {
				m.observer.ObserveDecision(principal.Role, permission, allowed)
			}

			if !allowed {
				m.recorder.LogSecurityEvent(r.Context(), service.SecurityEvent{
					Actor: ActorFromRequest(r),
					Type:  entity.SecurityEventPermissionDenied,
					Details: entity.JSON{
						"required": string(permission),
						"role":     principal.Role,
						"path":     r.URL.Path,
					},
				})
				response.Forbidden(w, "Permission denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
