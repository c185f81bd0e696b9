// internal/app/features/payments/routes.go
package payments

import (
	"github.com/go-chi/chi/v5"

	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/mine", h.HandleMine)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin"))
		r.Get("/", h.HandleList)
	})

	return r
}
