// Package participants persists the people taking part in a crawl session
// and announces saved sessions to interested subscribers.
package participants

import (
	"context"
	"errors"

	"github.com/boirefacile/backend-go/internal/models"
)

// ErrMissingSession is returned when a call names no session.
var ErrMissingSession = errors.New("sessionId manquant")

// Store keeps the participant list of each session.
type Store interface {
	// Replace swaps the whole participant list of a session.
	Replace(ctx context.Context, sessionID string, participants []models.Participant) error
	// List returns a session's participants in the order they were saved.
	List(ctx context.Context, sessionID string) ([]models.Participant, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Stats describes the backing store for diagnostics.
type Stats struct {
	Backend string `json:"backend"`
	Version string `json:"version"`
	Count   int64  `json:"participants_count"`
}
