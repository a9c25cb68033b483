package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"okapi-care-network/internal/domain/entity"
	"okapi-care-network/internal/domain/rbac"
	"okapi-care-network/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacilityScopeMiddleware(t *testing.T) {
	recorder := &recordingRecorder{}
	m := NewFacilityScopeMiddleware(recorder)

	var scope FacilityScope
	router := mux.NewRouter()
	router.Use(m.Enforce)
	capture := func(w http.ResponseWriter, r *http.Request) {
		scope, _ = GetFacilityScopeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}
	router.HandleFunc("/facilities/{facilityId}/staff", capture)
	router.HandleFunc("/residents", capture)

	own := uuid.New()
	other := uuid.New()
	nurse := &Principal{UserID: uuid.New(), Role: rbac.RoleNurse, FacilityID: &own}

	serve := func(p *Principal, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, requestAs(p, http.MethodGet, target))
		return rec
	}

	t.Run("unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(nil, "/residents").Code)
	})

	t.Run("admin sees all facilities", func(t *testing.T) {
		rec := serve(&Principal{UserID: uuid.New(), Role: rbac.RoleAdmin}, "/facilities/"+other.String()+"/staff")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, scope.All)
		assert.True(t, scope.Allows(other))
	})

	t.Run("own facility", func(t *testing.T) {
		rec := serve(nurse, "/facilities/"+own.String()+"/staff")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, scope.All)
		assert.Equal(t, own, scope.FacilityID)
		assert.False(t, scope.Allows(other))
	})

	t.Run("no facility configured", func(t *testing.T) {
		rec := serve(&Principal{UserID: uuid.New(), Role: rbac.RoleOwner}, "/residents")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, response.CodeFacilityDenied, decodeErrorCode(t, rec))
		assert.Empty(t, recorder.events)
	})

	t.Run("cross facility path", func(t *testing.T) {
		rec := serve(nurse, "/facilities/"+other.String()+"/staff")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, entity.SecurityEventCrossFacilityAttempt, recorder.events[0].Type)
		assert.Equal(t, other.String(), recorder.events[0].Details["attempted_facility"])
		assert.Equal(t, &own, recorder.events[0].FacilityID)
	})

	t.Run("cross facility query", func(t *testing.T) {
		rec := serve(nurse, "/residents?facilityId="+other.String())
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Len(t, recorder.events, 2)
	})

	t.Run("no requested facility falls back to own", func(t *testing.T) {
		rec := serve(nurse, "/residents")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, own, scope.FacilityID)
	})

	t.Run("own facility in upper case", func(t *testing.T) {
		rec := serve(nurse, "/facilities/"+strings.ToUpper(own.String())+"/staff")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, own, scope.FacilityID)
		assert.Len(t, recorder.events, 2)
	})

	t.Run("malformed facility id", func(t *testing.T) {
		rec := serve(nurse, "/residents?facilityId=not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, response.CodeValidationFailed, decodeErrorCode(t, rec))
		assert.Len(t, recorder.events, 2)
	})
}
