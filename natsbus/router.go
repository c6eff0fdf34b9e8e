// Package natsbus carries player intents and events over NATS. Clients
// publish intents to <prefix>.intent.<type> and listen on
// <prefix>.player.<their id>.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/lobby"
)

const (
	publishAttempts = 3
	publishDelay    = 5 * time.Millisecond
)

var ErrBadSubjectToken = errors.New("ids may not contain '.', '*', '>' or spaces")

// Publisher is the part of a NATS connection the router writes through.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Handler consumes decoded intents; *lobby.Manager is one.
type Handler interface {
	Handle(ctx context.Context, in lobby.Intent) error
}

// Ack is the reply sent to intents that were published as requests.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Router is both the event sink for the lobby and the intent subscriber.
type Router struct {
	pub    Publisher
	prefix string
}

func NewRouter(pub Publisher, prefix string) *Router {
	return &Router{pub: pub, prefix: prefix}
}

// Connect dials the server with reconnects that never give up.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("wordduel"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Err(err).Msg("nats-disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats-reconnected")
		}),
	)
}

func (r *Router) IntentSubject() string {
	return r.prefix + ".intent.>"
}

func (r *Router) PlayerSubject(playerID string) string {
	return r.prefix + ".player." + playerID
}

func validToken(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".*> \t\r\n")
}

// Emit publishes e once per recipient.
func (r *Router) Emit(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Err(err).Str("type", string(e.Type)).Msg("event-marshal-failed")
		return
	}
	for _, to := range e.To {
		if !validToken(to) {
			log.Warn().Str("player", to).Str("type", string(e.Type)).Msg("event-recipient-unaddressable")
			continue
		}
		subject := r.PlayerSubject(to)
		err := retry.Do(
			func() error {
				return r.pub.Publish(subject, data)
			},
			retry.Attempts(publishAttempts),
			retry.Delay(publishDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return errors.Is(err, nats.ErrReconnectBufExceeded)
			}),
		)
		if err != nil {
			log.Err(err).Str("subject", subject).Str("type", string(e.Type)).Msg("event-publish-failed")
		}
	}
}

// decode turns an intent message into an Intent. The subject names the
// intent type; the body carries the rest.
func (r *Router) decode(subject string, data []byte) (lobby.Intent, error) {
	var in lobby.Intent
	typ, ok := strings.CutPrefix(subject, r.prefix+".intent.")
	if !ok || !validToken(typ) {
		return in, fmt.Errorf("unexpected subject %q", subject)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("decoding %s: %w", typ, err)
		}
	}
	in.Type = lobby.IntentType(typ)
	if !validToken(in.PlayerID) {
		return in, fmt.Errorf("playerId %q: %w", in.PlayerID, ErrBadSubjectToken)
	}
	return in, nil
}

// dispatch handles one message and acks it if the sender asked for a reply.
func (r *Router) dispatch(ctx context.Context, h Handler, m *nats.Msg) {
	in, err := r.decode(m.Subject, m.Data)
	if err != nil {
		log.Debug().Err(err).Str("subject", m.Subject).Msg("bad-intent")
	} else {
		err = h.Handle(ctx, in)
	}
	if m.Reply == "" {
		return
	}
	ack := Ack{OK: err == nil}
	if err != nil {
		ack.Error = err.Error()
	}
	data, _ := json.Marshal(ack)
	if perr := r.pub.Publish(m.Reply, data); perr != nil {
		log.Err(perr).Str("reply", m.Reply).Msg("ack-failed")
	}
}

// Serve subscribes to intents and feeds them to h until ctx is done, then
// drains the subscription.
func (r *Router) Serve(ctx context.Context, nc *nats.Conn, h Handler) error {
	sub, err := nc.Subscribe(r.IntentSubject(), func(m *nats.Msg) {
		r.dispatch(ctx, h, m)
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", r.IntentSubject()).Msg("listening")

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		log.Err(err).Msg("drain-failed")
	}
	log.Info().Msg("router-stopped")
	return nil
}
