package server

import (
	"encoding/json"
	"net/http"
)

// apiError is the JSON body of error responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string, cause error) {
	body := apiError{Code: code, Message: message}
	if cause != nil {
		body.Details = cause.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
