// Package respond writes JSON API responses with consistent shapes.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// ServerError logs err and writes a generic 500 so internals never leak.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op, zap.Error(err))
	Error(w, http.StatusInternalServerError, "a server error occurred")
}

// Decode parses the request body into dst, returning false (and writing a
// 400) when the body is not valid JSON.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
