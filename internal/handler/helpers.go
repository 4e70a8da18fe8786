package handler

import (
	"errors"
	"net/http"

	"codeforge/internal/httputil"
)

// PathParam returns a path wildcard, writing a 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// parseBody decodes the JSON body, writing the error response itself on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	err := httputil.ParseJSON(w, r, dest)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
	return false
}
