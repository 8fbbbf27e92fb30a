package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/logger"
)

// maxLoginBody bounds the accepted request body size.
const maxLoginBody = 1 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type loginErrorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

// Login checks the posted credentials against the static user store.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, loginErrorResponse{Status: false, Error: "Invalid request body"})
			return
		}

		if !d.Users.Verify(req.Username, req.Password) {
			d.Logger.Info("login rejected",
				logger.String("username", req.Username),
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, loginResponse{Status: false, Message: "Invalid credentials"})
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{Status: true, Message: "Login successful"})
	}
}
