package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/finopsguard/guardrail/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeAppError maps an *apperrors.Error to an HTTP status and code,
// falling back to 500 internal_error for anything else.
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperrors.Error)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	switch appErr.Type {
	case apperrors.TypeInput:
		writeError(w, http.StatusBadRequest, "invalid_request", appErr.Message)
	case apperrors.TypeNotFound:
		writeError(w, http.StatusNotFound, "not_found", appErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", appErr.Message)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
