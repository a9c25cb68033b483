package middleware

import (
	"net/http"

	"okapi-care-network/internal/domain/feature"
	"okapi-care-network/pkg/response"
)

type FeatureMiddleware struct {
	features *feature.Set
}

func NewFeatureMiddleware(features *feature.Set) *FeatureMiddleware {
	return &FeatureMiddleware{features: features}
}

// RequireFeature hides a route behind a flag. It panics for an undeclared flag.
func (m *FeatureMiddleware) RequireFeature(flag feature.Flag) func(http.Handler) http.Handler {
	if !flag.Valid() {
		panic("middleware: RequireFeature with " + feature.ErrUnknownFlag.Error() + " " + string(flag))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.features.IsEnabled(flag) {
				response.Error(w, http.StatusForbidden, "This feature is coming soon", response.ErrorDetail{
					Code: response.CodeFeatureDisabled,
					Details: map[string]string{
						"feature":        string(flag),
						"available_from": feature.Phase2Target,
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
