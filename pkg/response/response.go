// Package response writes the JSON envelopes used across the API.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Data sends {"success":true,"data":...} with status 200.
func Data(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// Message sends {"message":...,"data":...}, used by create and update.
func Message(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, map[string]interface{}{
		"message": message,
		"data":    data,
	})
}

// Deleted sends {"success":true,"message":...}.
func Deleted(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

// NotFound sends a structured 404 body.
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// ValidationErrors sends the itemised 422 body with per-field messages.
func ValidationErrors(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"success":    false,
		"message":    "Validation errors",
		"errors":     errs,
		"error_type": "validation_error",
	})
}

// Unauthenticated sends the 401 body returned by the auth gate.
func Unauthenticated(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"message": "Unauthenticated. Token is invalid or expired.Please login again",
	})
}

// ServerError sends a generic 500. Internal error text is never echoed to
// the caller; it belongs in the logs.
func ServerError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"message": "Something went wrong",
	})
}
