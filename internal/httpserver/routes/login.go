package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/httpserver/handlers"
)

func init() { Register(registerLogin) }

func registerLogin(r chi.Router, d deps.Deps) {
	r.Post("/login", handlers.Login(d))
}
