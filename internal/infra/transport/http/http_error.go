package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body sent for every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Error replies to the request with a JSON error body and the given status
// code. The detail string is the human-readable message; the status code is
// the machine-readable kind.
func Error(w http.ResponseWriter, detail string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: detail})
}
