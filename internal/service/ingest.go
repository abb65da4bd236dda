package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitrello/github-integration/internal/adapter/otel"
	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/webhook"
	"github.com/gitrello/github-integration/internal/port/boardapi"
	"github.com/gitrello/github-integration/internal/port/database"
	"github.com/gitrello/github-integration/internal/port/messagequeue"
)

// SubjectIssueOpened is the message-queue subject for normalized
// issue-opened events.
const SubjectIssueOpened = "github.issues.opened"

// IngestService processes inbound GitHub webhook deliveries. An
// issue-opened event fans out into one GITrello ticket per link pointing at
// the repository; each ticket creation fails independently and no failure
// is surfaced back to GitHub.
type IngestService struct {
	store     database.Store
	board     boardapi.Client
	publisher messagequeue.Publisher
	metrics   *otel.Metrics
	logger    *slog.Logger
}

// NewIngestService creates an IngestService. publisher and metrics may be nil.
func NewIngestService(store database.Store, board boardapi.Client, publisher messagequeue.Publisher, metrics *otel.Metrics, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:     store,
		board:     board,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

type issuePayload struct {
	Action string `json:"action"`
	Issue  struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"issue"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Process handles one delivery. Event types other than "issues" and issue
// actions other than "opened" are acknowledged without work. Malformed JSON
// on a recognized event type is the one failure surfaced to the caller.
func (s *IngestService) Process(ctx context.Context, eventType string, body []byte) error {
	if eventType != webhook.EventIssues {
		return nil
	}

	ctx, span := otel.StartIngestSpan(ctx, eventType)
	defer span.End()

	var payload issuePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("parse issues payload: %w", domain.ErrInternal)
	}
	if payload.Action != webhook.ActionOpened {
		return nil
	}

	owner, name, ok := strings.Cut(payload.Repository.FullName, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("repository full_name %q: %w", payload.Repository.FullName, domain.ErrInternal)
	}

	ev := webhook.IssueEvent{
		Action:          payload.Action,
		RepositoryOwner: owner,
		RepositoryName:  name,
		Title:           payload.Issue.Title,
		Body:            payload.Issue.Body,
		ReceivedAt:      time.Now().UTC(),
	}

	links, err := s.store.GetLinksByRepository(ctx, owner, name)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range links {
		boardID := l.BoardID
		g.Go(func() error {
			if err := s.board.CreateTicket(gctx, boardID, ev.Title, ev.Body); err != nil {
				s.logger.Warn("ticket creation failed",
					"board_id", boardID, "repository", payload.Repository.FullName, "error", err)
				if s.metrics != nil {
					s.metrics.TicketCreateFailures.Add(gctx, 1)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.metrics != nil {
		s.metrics.IssuesIngested.Add(ctx, 1)
	}

	if s.publisher != nil {
		data, err := json.Marshal(ev)
		if err == nil {
			err = s.publisher.Publish(ctx, SubjectIssueOpened, data)
		}
		if err != nil {
			s.logger.Warn("issue event publish failed", "subject", SubjectIssueOpened, "error", err)
		}
	}

	s.logger.Info("issue event processed",
		"repository", payload.Repository.FullName, "links", len(links))
	return nil
}
