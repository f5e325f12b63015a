package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/device"
)

// NATS publishes events on <prefix>.events.<display> and accepts command
// payloads on <prefix>.commands.<display>. Requests with a reply subject get
// "ok" or the error text back.
type NATS struct {
	conn   *nats.Conn
	prefix string
	host   Host
	sub    *nats.Subscription
}

// ConnectNATS dials the NATS server.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("lfdctl"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// NewNATS creates a NATS bridge over conn.
func NewNATS(conn *nats.Conn, prefix string, h Host) *NATS {
	return &NATS{conn: conn, prefix: prefix, host: h}
}

func (b *NATS) Name() string { return "nats" }

// EventSubject returns the subject events of display id are published on.
func (b *NATS) EventSubject(id string) string {
	return b.prefix + ".events." + id
}

func (b *NATS) commandPrefix() string {
	return b.prefix + ".commands."
}

// Handle publishes one event.
func (b *NATS) Handle(ctx context.Context, evt device.Event) error {
	return b.conn.Publish(b.EventSubject(evt.Device), marshalEvent(evt))
}

// Start subscribes to the command subjects.
func (b *NATS) Start(ctx context.Context) error {
	sub, err := b.conn.Subscribe(b.commandPrefix()+"*", func(msg *nats.Msg) {
		id := strings.TrimPrefix(msg.Subject, b.commandPrefix())
		text, err := dispatch(ctx, b.host, id, msg.Data)
		if err != nil {
			log.Warn().Err(err).Str("display", id).Msg("NATS command rejected")
		} else {
			log.Debug().Str("display", id).Str("command", text).Msg("NATS command submitted")
		}
		if msg.Reply != "" {
			_ = msg.Respond(replyPayload(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s*: %w", b.commandPrefix(), err)
	}
	b.sub = sub
	log.Info().Str("subject", sub.Subject).Msg("NATS command subscription started")
	return nil
}

// Stop drops the command subscription.
func (b *NATS) Stop() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
}

func replyPayload(err error) []byte {
	if err != nil {
		return []byte("error: " + err.Error())
	}
	return []byte("ok")
}
