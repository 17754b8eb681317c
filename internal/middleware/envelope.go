package middleware

import (
	"encoding/json"
	"net/http"

	"go-auth-core/internal/model"
)

// writeErrorEnvelope answers with the same {success:false, error} body the
// handlers produce.
func writeErrorEnvelope(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}

func errorEnvelope(code string, message string) string {
	raw, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
	return string(raw)
}
