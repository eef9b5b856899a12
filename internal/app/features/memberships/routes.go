// internal/app/features/memberships/routes.go
package memberships

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the membership endpoints under "/memberships".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/company/{id}/request", h.HandleRequest)
	r.Post("/company/{id}/invite/{user_id}", h.HandleInvite)
	r.Get("/company/{cid}/user/{uid}", h.ServeMembership)
	r.Get("/user/{uid}", h.ServeUserCompanies)
	r.Get("/available/{uid}", h.ServeAvailable)

	r.Patch("/{id}/accept-invite", h.transition(h.Svc.AcceptInvite))
	r.Patch("/{id}/cancel-invite", h.transition(h.Svc.CancelInvite))
	r.Patch("/{id}/accept-request", h.transition(h.Svc.AcceptRequest))
	r.Patch("/{id}/cancel-request", h.transition(h.Svc.CancelRequest))
	r.Patch("/{id}/add-to-admin", h.transition(h.Svc.AddToAdmin))
	r.Patch("/{id}/remove-from-admin", h.transition(h.Svc.RemoveFromAdmin))
	r.Delete("/{id}/leave", h.transition(h.Svc.Leave))
	r.Delete("/{id}/remove", h.transition(h.Svc.RemoveMember))

	return r
}
