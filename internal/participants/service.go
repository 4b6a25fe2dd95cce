package participants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/models"
)

// SavedEvent is published after a session's participants were replaced.
type SavedEvent struct {
	SessionID string    `json:"sessionId"`
	Count     int       `json:"count"`
	SavedAt   time.Time `json:"savedAt"`
}

type Notifier interface {
	ParticipantsSaved(ctx context.Context, event SavedEvent) error
}

type Service struct {
	store    Store
	notifier Notifier
	onSaved  func(count int)
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithSaveObserver registers fn to be called with the participant count of
// every successful save.
func WithSaveObserver(fn func(count int)) Option {
	return func(s *Service) {
		s.onSaved = fn
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces the participants of a session. Notification failures are
// logged and do not fail the save.
func (s *Service) Save(ctx context.Context, sessionID string, participants []models.Participant) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrMissingSession
	}

	savedAt := s.now().UTC()
	rows := make([]models.Participant, len(participants))
	for i, p := range participants {
		rows[i] = models.Participant{
			SessionID: sessionID,
			Name:      strings.TrimSpace(p.Name),
			Address:   strings.TrimSpace(p.Address),
			CreatedAt: savedAt,
		}
	}

	if err := s.store.Replace(ctx, sessionID, rows); err != nil {
		return fmt.Errorf("saving participants for session %s: %w", sessionID, err)
	}

	log.Info().
		Str("session_id", sessionID).
		Int("count", len(rows)).
		Msg("Saved participants")

	if s.onSaved != nil {
		s.onSaved(len(rows))
	}

	if s.notifier != nil {
		event := SavedEvent{SessionID: sessionID, Count: len(rows), SavedAt: savedAt}
		if err := s.notifier.ParticipantsSaved(ctx, event); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to publish participants event")
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, sessionID string) ([]models.Participant, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	participants, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing participants for session %s: %w", sessionID, err)
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}
