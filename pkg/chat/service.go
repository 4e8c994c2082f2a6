package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/lumokids/companion/pkg/ai"
	"github.com/lumokids/companion/pkg/db"
)

const (
	replyTemperature     = 0.7
	extractorTemperature = 0.0
)

type Config struct {
	CompletionsModel  string
	ExtractorModel    string
	HistoryWindow     int
	ExtractionCadence int
	ReplyTimeout      time.Duration
	ExtractionTimeout time.Duration
}

// Service runs the conversation pipeline for one inbound message:
// profile -> context -> reply -> persistence -> memory maintenance.
type Service struct {
	logger      *log.Logger
	storage     Storage
	completions ai.Completions
	nc          *nats.Conn
	cfg         Config
}

func NewService(logger *log.Logger, storage Storage, completions ai.Completions, nc *nats.Conn, cfg Config) *Service {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 8
	}
	if cfg.ExtractionCadence <= 0 {
		cfg.ExtractionCadence = 4
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 30 * time.Second
	}
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = 20 * time.Second
	}
	return &Service{
		logger:      logger,
		storage:     storage,
		completions: completions,
		nc:          nc,
		cfg:         cfg,
	}
}

// ReplyEvent is published on chat.<child_id> after every reply.
type ReplyEvent struct {
	ChildID   string `json:"child_id"`
	Reply     string `json:"reply"`
	CreatedAt string `json:"created_at"`
}

// SendMessage produces the assistant's reply for one inbound message.
// Errors returned before the reply is computed abort the request;
// everything after the model call is best-effort and never fails an
// already-answered request.
func (s *Service) SendMessage(ctx context.Context, userID string, message string) (string, error) {
	profile, err := s.storage.GetChildProfileByUserID(ctx, userID)
	if err != nil {
		return "", errors.Wrap(err, "loading child profile")
	}
	if profile == nil {
		return "", ErrProfileNotFound
	}

	messages, err := s.BuildContext(ctx, profile, message)
	if err != nil {
		return "", err
	}

	replyCtx, cancel := context.WithTimeout(ctx, s.cfg.ReplyTimeout)
	defer cancel()
	completion, err := s.completions.Completions(replyCtx, messages, s.cfg.CompletionsModel, replyTemperature)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	reply := completion.Content

	// The reply is committed from here on. The tail is detached from
	// the caller's cancellation so the user's own message is not lost
	// when the caller disconnects mid-write.
	tail := context.WithoutCancel(ctx)
	s.persistTurns(tail, profile.ID, message, reply)
	s.publishReply(profile.ID, reply)
	s.maybeExtract(tail, profile)

	return reply, nil
}

func (s *Service) persistTurns(ctx context.Context, childID string, userMessage string, reply string) {
	if err := s.storage.AppendTurn(ctx, childID, db.RoleUser, userMessage); err != nil {
		s.logger.Error("failed to persist user turn", "error", err, "child_id", childID)
	}
	if err := s.storage.AppendTurn(ctx, childID, db.RoleAssistant, reply); err != nil {
		s.logger.Error("failed to persist assistant turn", "error", err, "child_id", childID)
	}
}

func (s *Service) publishReply(childID string, reply string) {
	if s.nc == nil {
		return
	}

	subject := fmt.Sprintf("chat.%s", childID)
	payload, err := json.Marshal(ReplyEvent{
		ChildID:   childID,
		Reply:     reply,
		CreatedAt: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Error("failed to marshal reply event", "error", err, "child_id", childID)
		return
	}
	if err := s.nc.Publish(subject, payload); err != nil {
		s.logger.Error("failed to publish reply event", "error", err, "subject", subject)
	}
}

func (s *Service) maybeExtract(ctx context.Context, profile *db.ChildProfile) {
	if !s.shouldExtract(ctx, profile.ID) {
		return
	}
	s.runExtraction(ctx, profile)
}
