package events

import (
	"context"
	"errors"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palpiteiro/tipengine/internal/generator"
)

type msg struct {
	subject string
	data    []byte
}

type fakePub struct {
	sent []msg
	err  error
}

func (f *fakePub) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg{subject, data})
	return nil
}

func TestSavePickPublishesEvent(t *testing.T) {
	pub := &fakePub{}
	e := &Emitter{pub: pub, subjectPrefix: "tips.picks"}
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	p := generator.Pick{ID: 2, Numbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, Strategy: generator.Cold}

	require.NoError(t, e.SavePick(context.Background(), "ana.maria", "d20250115-standard-plan", at, p))
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "tips.picks.ana_maria", pub.sent[0].subject)

	var ev PickEvent
	require.NoError(t, jsoniter.Unmarshal(pub.sent[0].data, &ev))
	assert.Equal(t, TypePickCreated, ev.Type)
	assert.Equal(t, "ana.maria", ev.UserID)
	assert.Equal(t, "d20250115-standard-plan", ev.Batch)
	assert.Equal(t, p, ev.Pick)
	assert.Equal(t, at.UnixMilli(), ev.Timestamp)
}

func TestSavePickErrors(t *testing.T) {
	boom := errors.New("boom")
	e := &Emitter{pub: &fakePub{err: boom}, subjectPrefix: "x"}
	assert.ErrorIs(t, e.SavePick(context.Background(), "u", "b", time.Now(), generator.Pick{}), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.SavePick(ctx, "u", "b", time.Now(), generator.Pick{}), context.Canceled)
}

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "_", subjectToken(""))
	assert.Equal(t, "a_b_c_d", subjectToken("a.b*c>d"))
	assert.Equal(t, "user-42", subjectToken("user-42"))
}

func TestCloseWithoutConn(t *testing.T) {
	e := &Emitter{pub: &fakePub{}}
	e.Close()
}
