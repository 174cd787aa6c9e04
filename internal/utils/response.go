package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"eventx/internal/apperr"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, errMsg string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
}

// WriteJSON writes a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a service error onto the API contract's status code and
// a {"message": ...} body.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.HTTPStatus(err), map[string]string{"message": apperr.Message(err)})
}
