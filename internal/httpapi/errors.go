package httpapi

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes msg as a bare JSON string, the error body clients of
// both detection routes expect.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(msg)
}
