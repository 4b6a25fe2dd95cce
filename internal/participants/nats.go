package participants

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const DefaultSubject = "participants.saved"

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes SavedEvent messages as JSON on a NATS subject.
type NATSNotifier struct {
	nc      *nats.Conn
	pub     publisher
	subject string
}

var _ Notifier = (*NATSNotifier)(nil)

func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("boirefacile-backend"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Debug().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	n := newNotifier(nc, subject)
	n.nc = nc
	return n, nil
}

func newNotifier(pub publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: pub, subject: subject}
}

func (n *NATSNotifier) ParticipantsSaved(_ context.Context, event SavedEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(n.subject, b); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.subject, err)
	}
	log.Debug().Str("subject", n.subject).Str("session_id", event.SessionID).Msg("Published participants event")
	return nil
}

func (n *NATSNotifier) Close() {
	if n.nc != nil {
		if err := n.nc.Drain(); err != nil {
			n.nc.Close()
		}
	}
}
