package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/domain/profile"
	"github.com/gitrello/github-integration/internal/port/boardapi"
	"github.com/gitrello/github-integration/internal/port/cache"
	"github.com/gitrello/github-integration/internal/port/database"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
	"github.com/gitrello/github-integration/internal/port/messagequeue"
)

// Ensure mock types implement their interfaces at compile time.
var (
	_ database.Store         = (*mockStore)(nil)
	_ gitprovider.Factory    = (*fakeFactory)(nil)
	_ gitprovider.Client     = (*fakeClient)(nil)
	_ boardapi.Client        = (*mockBoard)(nil)
	_ cache.Cache            = (*mockCache)(nil)
	_ messagequeue.Publisher = (*mockPublisher)(nil)
)

// mockStore is an in-memory database.Store with per-method error hooks.
type mockStore struct {
	mu       sync.Mutex
	links    map[string]link.BoardRepositoryLink
	records  map[string]link.WebhookRecord
	profiles map[int64]profile.Profile
	nextID   int

	createLinkErr   error
	createRecordErr error
	updateLinkErr   error
	deleteLinkErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		links:    make(map[string]link.BoardRepositoryLink),
		records:  make(map[string]link.WebhookRecord),
		profiles: make(map[int64]profile.Profile),
	}
}

func (m *mockStore) id() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *mockStore) CreateLink(_ context.Context, n link.NewLink) (*link.BoardRepositoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createLinkErr != nil {
		return nil, m.createLinkErr
	}
	for _, l := range m.links {
		if l.BoardID == n.BoardID {
			return nil, fmt.Errorf("create link for board %d: %w", n.BoardID, domain.ErrAlreadyExists)
		}
	}
	now := time.Now().UTC()
	l := link.BoardRepositoryLink{
		ID:              m.id(),
		BoardID:         n.BoardID,
		RepositoryOwner: n.RepositoryOwner,
		RepositoryName:  n.RepositoryName,
		GithubProfileID: n.GithubProfileID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.links[l.ID] = l
	return &l, nil
}

func (m *mockStore) GetLinkByID(_ context.Context, id string) (*link.BoardRepositoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok {
		return nil, fmt.Errorf("get link %s: %w", id, domain.ErrNotFound)
	}
	return &l, nil
}

func (m *mockStore) GetLinkByBoardID(_ context.Context, boardID int64) (*link.BoardRepositoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.BoardID == boardID {
			l := l
			return &l, nil
		}
	}
	return nil, fmt.Errorf("get link for board %d: %w", boardID, domain.ErrNotFound)
}

func (m *mockStore) GetLinksByRepository(_ context.Context, owner, name string) ([]link.BoardRepositoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []link.BoardRepositoryLink
	for _, l := range m.links {
		if l.RepositoryOwner == owner && l.RepositoryName == name {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateLinkRepository(_ context.Context, id, owner, name string) (*link.BoardRepositoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateLinkErr != nil {
		return nil, m.updateLinkErr
	}
	l, ok := m.links[id]
	if !ok {
		return nil, fmt.Errorf("update link %s: %w", id, domain.ErrNotFound)
	}
	l.RepositoryOwner = owner
	l.RepositoryName = name
	l.UpdatedAt = time.Now().UTC()
	m.links[id] = l
	return &l, nil
}

func (m *mockStore) DeleteLink(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteLinkErr != nil {
		return m.deleteLinkErr
	}
	if _, ok := m.links[id]; !ok {
		return fmt.Errorf("delete link %s: %w", id, domain.ErrNotFound)
	}
	delete(m.links, id)
	for rid, r := range m.records {
		if r.BoardRepositoryLinkID == id {
			delete(m.records, rid)
		}
	}
	return nil
}

func (m *mockStore) CreateWebhookRecord(_ context.Context, n link.NewWebhookRecord) (*link.WebhookRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createRecordErr != nil {
		return nil, m.createRecordErr
	}
	now := time.Now().UTC()
	r := link.WebhookRecord{
		ID:                    m.id(),
		WebhookID:             n.WebhookID,
		BoardRepositoryLinkID: n.BoardRepositoryLinkID,
		CallbackURL:           n.CallbackURL,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	m.records[r.ID] = r
	return &r, nil
}

func (m *mockStore) GetWebhookRecordByLinkID(_ context.Context, linkID string) (*link.WebhookRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.BoardRepositoryLinkID == linkID {
			r := r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("get webhook record for link %s: %w", linkID, domain.ErrNotFound)
}

func (m *mockStore) GetWebhookRecordsByRepository(_ context.Context, owner, name string) ([]link.WebhookRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []link.WebhookRecord
	for _, r := range m.records {
		l, ok := m.links[r.BoardRepositoryLinkID]
		if ok && l.RepositoryOwner == owner && l.RepositoryName == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateWebhookRecordID(_ context.Context, id string, webhookID int64) (*link.WebhookRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("update webhook record %s: %w", id, domain.ErrNotFound)
	}
	r.WebhookID = webhookID
	r.UpdatedAt = time.Now().UTC()
	m.records[id] = r
	return &r, nil
}

func (m *mockStore) CreateProfile(_ context.Context, n profile.NewProfile) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[n.UserID]; ok {
		return nil, fmt.Errorf("create profile for user %d: %w", n.UserID, domain.ErrAlreadyExists)
	}
	p := profile.Profile{
		ID:           m.id(),
		UserID:       n.UserID,
		GithubUserID: n.GithubUserID,
		GithubLogin:  n.GithubLogin,
		AccessToken:  n.AccessToken,
		CreatedAt:    time.Now().UTC(),
	}
	m.profiles[n.UserID] = p
	return &p, nil
}

func (m *mockStore) GetProfileByUserID(_ context.Context, userID int64) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("get profile for user %d: %w", userID, domain.ErrNotFound)
	}
	return &p, nil
}

// addProfile seeds a profile and returns it.
func (m *mockStore) addProfile(userID int64, token string) profile.Profile {
	p, _ := m.CreateProfile(context.Background(), profile.NewProfile{
		UserID:       userID,
		GithubUserID: userID * 100,
		GithubLogin:  fmt.Sprintf("user%d", userID),
		AccessToken:  token,
	})
	return *p
}

// fakeClient records provider calls and serves canned results.
type fakeClient struct {
	mu         sync.Mutex
	creates    []string
	deletes    []string
	nextHookID int64
	createErr  error
	deleteErr  error
	user       gitprovider.User
	userErr    error
	repos      []gitprovider.Repository
	reposErr   error
}

func (f *fakeClient) CreateWebhook(_ context.Context, owner, name, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.creates = append(f.creates, owner+"/"+name)
	f.nextHookID++
	return 1000 + f.nextHookID, nil
}

func (f *fakeClient) DeleteWebhook(_ context.Context, owner, name string, webhookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, fmt.Sprintf("%s/%s#%d", owner, name, webhookID))
	return f.deleteErr
}

func (f *fakeClient) GetUser(_ context.Context) (*gitprovider.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeClient) ListRepositories(_ context.Context) ([]gitprovider.Repository, error) {
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	return f.repos, nil
}

func (f *fakeClient) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeClient) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

// fakeFactory hands out the same fakeClient for every token and remembers
// the tokens it saw.
type fakeFactory struct {
	mu     sync.Mutex
	client *fakeClient
	tokens []string
}

func (f *fakeFactory) Client(accessToken string) gitprovider.Client {
	f.mu.Lock()
	f.tokens = append(f.tokens, accessToken)
	f.mu.Unlock()
	return f.client
}

// mockBoard is a boardapi.Client with configurable outcomes.
type mockBoard struct {
	mu         sync.Mutex
	perms      boardapi.Permissions
	permsErr   error
	permsCalls int
	tickets    []string
	ticketErr  map[int64]error
}

func (m *mockBoard) GetBoardPermissions(_ context.Context, _, _ int64) (*boardapi.Permissions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permsCalls++
	if m.permsErr != nil {
		return nil, m.permsErr
	}
	p := m.perms
	return &p, nil
}

func (m *mockBoard) CreateTicket(_ context.Context, boardID int64, title, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ticketErr[boardID]; ok {
		return err
	}
	m.tickets = append(m.tickets, fmt.Sprintf("%d:%s", boardID, title))
	return nil
}

// mockCache is an in-memory cache.Cache that ignores TTLs.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// mockPublisher records published messages.
type mockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{messages: make(map[string][][]byte)}
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages[subject] = append(m.messages[subject], data)
	return nil
}
