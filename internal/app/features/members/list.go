// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
)

// HandleList handles GET /members (admin only).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Members.List(ctx)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "list members", err)
		return
	}

	views := make([]memberView, 0, len(all))
	for _, m := range all {
		views = append(views, toView(m))
	}
	jsonapi.Write(w, http.StatusOK, views)
}
