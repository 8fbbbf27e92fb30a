package handlers

import (
	"net/http"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/logger"
)

type reloadResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// Reload triggers an immediate out-of-schedule dataset refresh. The
// trigger channel is buffered size 1, so a refresh already in flight
// answers 429 instead of queueing up.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual dataset refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: true, Message: "Refresh triggered"})
		default:
			d.Logger.Warn("dataset refresh already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Status: false, Message: "Refresh already in progress"})
		}
	}
}
