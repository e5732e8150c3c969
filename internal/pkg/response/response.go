package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope for every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
}

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Status is already sent; nothing left to do but log at the caller.
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes the error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Message: message})
}

// Success writes a 200 response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
