package response

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// ErrorDetail is the machine readable part of an error response.
type ErrorDetail struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes shared by middleware and handlers.
const (
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeFacilityDenied   = "FACILITY_ACCESS_DENIED"
	CodeFeatureDisabled  = "FEATURE_DISABLED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// ErrorWithCode writes an error response carrying a stable code.
func ErrorWithCode(w http.ResponseWriter, statusCode int, code, message string) {
	Error(w, statusCode, message, ErrorDetail{Code: code})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   ErrorDetail{Code: CodeValidationFailed, Details: errors},
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	ErrorWithCode(w, http.StatusUnauthorized, CodeAuthRequired, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorWithCode(w, http.StatusInternalServerError, CodeInternal, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	ErrorWithCode(w, http.StatusForbidden, CodePermissionDenied, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	ErrorWithCode(w, http.StatusTooManyRequests, CodeRateLimited, message)
}
