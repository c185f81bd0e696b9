// internal/app/features/loans/routes.go
package loans

import (
	"github.com/go-chi/chi/v5"

	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/start", h.HandleStart)
	r.Get("/current", h.HandleCurrent)
	r.Get("/mine", h.HandleMine)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin"))
		r.Get("/history", h.HandleHistory)
	})

	return r
}
