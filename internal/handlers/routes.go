package handlers

import (
	"net/http"

	"famlink/internal/metrics"
)

// Router bundles the handlers served by the API
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Pairing    *PairingHandler
	Children   *ChildHandler
	Notes      *NoteHandler
	Pending    *PendingHandler
	Health     *HealthHandler
	Metrics    *metrics.Metrics
}

// Handler builds the mux and wraps it with request logging
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mw := rt.Middleware
	auth := mw.RequireAuth

	if rt.Health != nil {
		mux.HandleFunc("GET /healthz", rt.Health.Health)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.ListOAuthProviders)
	mux.HandleFunc("GET /api/auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /api/auth/{provider}/callback", rt.Auth.OAuthCallback)
	mux.HandleFunc("POST /api/auth/logout", auth(rt.Auth.Logout))

	// Profile
	mux.HandleFunc("GET /api/me", auth(rt.Auth.Me))
	mux.HandleFunc("PUT /api/me", auth(rt.Auth.UpdateMe))
	mux.HandleFunc("POST /api/me/invite-code", auth(rt.Auth.RegenerateInviteCode))

	// Pairing
	mux.HandleFunc("GET /api/pairing", auth(rt.Pairing.ListPaired))
	mux.HandleFunc("POST /api/pairing", auth(mw.RateLimit(rt.Pairing.Pair)))
	mux.HandleFunc("DELETE /api/pairing/{accountId}", auth(rt.Pairing.Unpair))

	// Children and activity logs
	mux.HandleFunc("GET /api/children", auth(rt.Children.ListChildren))
	mux.HandleFunc("POST /api/children", auth(rt.Children.CreateChild))
	mux.HandleFunc("GET /api/children/{id}", auth(rt.Children.GetChild))
	mux.HandleFunc("PUT /api/children/{id}", auth(rt.Children.UpdateChild))
	mux.HandleFunc("DELETE /api/children/{id}", auth(rt.Children.DeleteChild))
	mux.HandleFunc("GET /api/children/{id}/activities", auth(rt.Children.ListActivities))
	mux.HandleFunc("POST /api/children/{id}/activities", auth(rt.Children.RecordActivity))
	mux.HandleFunc("DELETE /api/children/{id}/activities/{activityId}", auth(rt.Children.DeleteActivity))

	// Notice board
	mux.HandleFunc("GET /api/notes", auth(rt.Notes.ListNotes))
	mux.HandleFunc("POST /api/notes", auth(rt.Notes.CreateNote))
	mux.HandleFunc("PUT /api/notes/{id}", auth(rt.Notes.UpdateNote))
	mux.HandleFunc("DELETE /api/notes/{id}", auth(rt.Notes.DeleteNote))
	mux.HandleFunc("POST /api/notes/{id}/archive", auth(rt.Notes.ArchiveNote))
	mux.HandleFunc("POST /api/notes/{id}/unarchive", auth(rt.Notes.UnarchiveNote))

	// Pending changes
	mux.HandleFunc("GET /api/pending", auth(rt.Pending.ListPending))
	mux.HandleFunc("POST /api/pending", auth(rt.Pending.Propose))
	mux.HandleFunc("GET /api/pending/sent", auth(rt.Pending.ListSent))
	mux.HandleFunc("POST /api/pending/{id}/approve", auth(rt.Pending.Approve))
	mux.HandleFunc("POST /api/pending/{id}/reject", auth(rt.Pending.Reject))

	return mw.Logging(mux)
}
