package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/httpserver/handlers"
)

func init() { Register(registerData) }

func registerData(r chi.Router, d deps.Deps) {
	r.Get("/get-data-client", handlers.Data(d))
}
