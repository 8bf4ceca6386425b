package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the response body with the given status. A nil data
// writes only the status line.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
