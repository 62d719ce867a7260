// Package events publishes generated picks to NATS.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"

	"github.com/palpiteiro/tipengine/internal/generator"
)

const TypePickCreated = "pick.created"

type PickEvent struct {
	Type      string         `json:"type"`
	UserID    string         `json:"user_id"`
	Batch     string         `json:"batch"`
	Pick      generator.Pick `json:"pick"`
	Timestamp int64          `json:"timestamp"`
}

// publisher is the part of *nats.Conn the emitter needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

type Emitter struct {
	conn          *nats.Conn
	pub           publisher
	subjectPrefix string
}

func NewEmitter(natsURL, subjectPrefix string) (*Emitter, error) {
	conn, err := nats.Connect(natsURL, nats.Name("tipengine"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Emitter{conn: conn, pub: conn, subjectPrefix: subjectPrefix}, nil
}

// Subject is the per-user subject picks are published on.
func (e *Emitter) Subject(user string) string {
	return e.subjectPrefix + "." + subjectToken(user)
}

// SavePick publishes a pick.created event; it satisfies the pick sink.
func (e *Emitter) SavePick(ctx context.Context, user, batch string, createdAt time.Time, p generator.Pick) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.Emit(PickEvent{
		Type:      TypePickCreated,
		UserID:    user,
		Batch:     batch,
		Pick:      p,
		Timestamp: createdAt.UnixMilli(),
	})
}

func (e *Emitter) Emit(event PickEvent) error {
	data, err := jsoniter.Marshal(event)
	if err != nil {
		return err
	}
	return e.pub.Publish(e.Subject(event.UserID), data)
}

func (e *Emitter) Close() {
	if e.conn != nil {
		e.conn.Close()
	}
}

// subjectToken replaces characters NATS reserves inside a subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
