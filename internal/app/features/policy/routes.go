// internal/app/features/policy/routes.go
package policy

import (
	"github.com/go-chi/chi/v5"

	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin"))
		r.Post("/", h.HandleUpdate)
	})

	return r
}
