package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Board↔repository links
		r.Put("/board-repositories", h.CreateOrUpdateLink)
		r.Get("/board-repository", h.GetLink)
		r.Delete("/board-repositories/{id}", h.DeleteLink)

		// Inbound GitHub events
		r.Post("/webhook", h.HandleWebhook)

		// GitHub profiles
		r.Post("/github-profiles", h.CreateProfile)
		r.Get("/github-profile", h.GetProfile)
		r.Get("/github-repositories", h.ListRepositories)
	})
}
