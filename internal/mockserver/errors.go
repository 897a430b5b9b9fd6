package mockserver

import (
	"encoding/json"
	"net/http"

	"ollamaprobe/pkg/types"
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeNativeError writes the {"error": "..."} body used by the /api endpoints.
func writeNativeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.NativeError{Error: msg})
}

// writeOpenAIError writes the OpenAI-style error envelope used by the /v1 endpoints.
func writeOpenAIError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: types.ErrorDetail{Message: msg, Type: typ, Code: status}})
}
