package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/domain/profile"
	"github.com/gitrello/github-integration/internal/middleware"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
)

// LinkAPI is the slice of the link service the handlers need.
type LinkAPI interface {
	CreateOrUpdate(ctx context.Context, userID int64, req link.CreateRequest) (*link.BoardRepositoryLink, bool, error)
	Get(ctx context.Context, userID, boardID int64) (*link.BoardRepositoryLink, error)
	Delete(ctx context.Context, userID int64, linkID string) error
}

// ProfileAPI is the slice of the profile service the handlers need.
type ProfileAPI interface {
	Create(ctx context.Context, userID int64, accessToken string) (*profile.Profile, error)
	Get(ctx context.Context, userID int64) (*profile.Profile, error)
	ListRepositories(ctx context.Context, userID int64) ([]gitprovider.Repository, error)
}

// IngestAPI processes inbound provider webhook deliveries.
type IngestAPI interface {
	Process(ctx context.Context, eventType string, body []byte) error
}

// Handlers bundles all HTTP handlers and their service dependencies.
type Handlers struct {
	links    LinkAPI
	profiles ProfileAPI
	ingest   IngestAPI
}

// NewHandlers creates the handler set.
func NewHandlers(links LinkAPI, profiles ProfileAPI, ingest IngestAPI) *Handlers {
	return &Handlers{links: links, profiles: profiles, ingest: ingest}
}

// requireUser extracts the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrNotAuthenticated)
		return 0, false
	}
	return userID, true
}

// CreateOrUpdateLink handles PUT /api/v1/board-repositories. Responds 201
// when a new link was created, 200 when an existing one was repointed.
func (h *Handlers) CreateOrUpdateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[link.CreateRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	l, created, err := h.links.CreateOrUpdate(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, l)
}

// GetLink handles GET /api/v1/board-repository?board_id=.
func (h *Handlers) GetLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID, err := strconv.ParseInt(r.URL.Query().Get("board_id"), 10, 64)
	if err != nil || boardID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "board_id is required")
		return
	}

	l, err := h.links.Get(r.Context(), userID, boardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// DeleteLink handles DELETE /api/v1/board-repositories/{id}.
func (h *Handlers) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "id is required")
		return
	}

	if err := h.links.Delete(r.Context(), userID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWebhook handles POST /api/v1/webhook, the callback GitHub delivers
// events to. Deliveries without an event header are acknowledged so GitHub's
// ping succeeds.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if err := h.ingest.Process(r.Context(), eventType, body); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateProfile handles POST /api/v1/github-profiles.
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[profile.CreateRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	p, err := h.profiles.Create(r.Context(), userID, req.AccessToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProfile handles GET /api/v1/github-profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListRepositories handles GET /api/v1/github-repositories.
func (h *Handlers) ListRepositories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	repos, err := h.profiles.ListRepositories(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if repos == nil {
		repos = []gitprovider.Repository{}
	}
	writeJSON(w, http.StatusOK, repos)
}
