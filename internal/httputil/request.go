package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodySize bounds request bodies; a document upload is the largest payload
const MaxBodySize = 4 << 20

// ErrEmptyBody is returned for a request without a JSON body
var ErrEmptyBody = errors.New("request body is empty")

// ParseJSON decodes the request body into dest.
// Unknown fields are accepted; validation happens in the services.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
