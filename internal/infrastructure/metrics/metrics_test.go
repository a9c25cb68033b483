package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"okapi-care-network/internal/domain/rbac"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDecision(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDecision(rbac.RoleNurse, rbac.EHRNotesWrite, true)
	m.ObserveDecision(rbac.RoleCaregiver, rbac.StaffManage, false)
	m.ObserveDecision("intruder", rbac.StaffManage, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("nurse", "ehr:notes:write", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("caregiver", "staff:manage", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("unknown", "staff:manage", "denied")))
}

func TestInstrumentAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveSecurityEvent("permission_denied")

	router := mux.NewRouter()
	router.Use(m.Instrument)
	router.HandleFunc("/staff/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staff/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/staff/{id}", "get", "418")))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/staff/43", nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/staff/{id}", "get", "418")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `okapi_security_events_total{type="permission_denied"} 1`))
	assert.True(t, strings.Contains(body, "okapi_http_request_duration_seconds"))
}
