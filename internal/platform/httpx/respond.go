// Package httpx provides HTTP response utilities shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape returned by report query endpoints.
type Envelope struct {
	Data   any `json:"data"`
	Totals any `json:"totals,omitempty"`
}

// ErrorBody carries a human-readable failure message.
type ErrorBody struct {
	StatusMessage string `json:"statusMessage"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Report sends a data/totals envelope.
func Report(w http.ResponseWriter, data any, totals any) {
	JSON(w, http.StatusOK, Envelope{Data: data, Totals: totals})
}

// Fail sends an error body with the given status code.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{StatusMessage: message})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
