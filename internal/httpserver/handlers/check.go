package handlers

import (
	"net/http"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/logger"
)

type checkResponse struct {
	Status            bool `json:"status"`
	Code              int  `json:"code"`
	CloudflareBlocked bool `json:"cloudflareBlocked"`
}

type checkErrorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

// Check probes the caller-supplied URL once and reports its
// reachability. A dead or challenged target is an expected outcome:
// both come back as HTTP 200 with status=false, never as a service
// error.
func Check(d deps.Deps) http.HandlerFunc {
	prober := d.Prober

	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")

		res, err := prober.Check(r.Context(), target)
		if err != nil {
			// Only validation fails here: no target to probe.
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "url parameter is required"})
			return
		}

		if res.ErrKind != "" {
			msg := res.ErrKind
			if msg == "timeout" {
				msg = "Time Out"
			}
			d.Logger.Debug("probe failed",
				logger.String("target", target),
				logger.String("kind", res.ErrKind))
			writeJSON(w, http.StatusOK, checkErrorResponse{Status: false, Error: msg})
			return
		}

		writeJSON(w, http.StatusOK, checkResponse{
			Status:            res.Reachable,
			Code:              res.StatusCode,
			CloudflareBlocked: res.ChallengeDetected,
		})
	}
}
