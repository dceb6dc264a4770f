package shared

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
