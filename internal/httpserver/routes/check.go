package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/httpserver/handlers"
	"github.com/aryodp/edgegate/internal/httpserver/mw"
)

func init() { Register(registerCheck) }

func registerCheck(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.CheckBurst,
		RefillPerIPPerMin: d.CheckRefillPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
	})
	r.With(limit).Get("/check", handlers.Check(d))
}
