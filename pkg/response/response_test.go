package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Created", map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Created", body["message"])
	assert.Equal(t, map[string]interface{}{"id": "1"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		write   func(w http.ResponseWriter)
		status  int
		code    string
		message string
	}{
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "") }, http.StatusUnauthorized, CodeAuthRequired, "Unauthorized"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "Permission denied") }, http.StatusForbidden, CodePermissionDenied, "Permission denied"},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "") }, http.StatusTooManyRequests, CodeRateLimited, "Too many requests, please try again later"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "") }, http.StatusInternalServerError, CodeInternal, "Internal server error"},
		{"feature", func(w http.ResponseWriter) {
			ErrorWithCode(w, http.StatusForbidden, CodeFeatureDisabled, "Coming soon")
		}, http.StatusForbidden, CodeFeatureDisabled, "Coming soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.code, body["error"].(map[string]interface{})["code"])
		})
	}
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"email": "email is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, CodeValidationFailed, errBody["code"])
	assert.Equal(t, "email is required", errBody["details"].(map[string]interface{})["email"])
}
