package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON is the single response path of every handler: one status,
// one JSON body. Handlers return right after calling it, which is
// what guarantees a response is written exactly once per request no
// matter which error branch fired.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the common error shape ({"error": "..."}).
type errorBody struct {
	Error string `json:"error"`
}
