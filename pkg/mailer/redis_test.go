package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueue = "test:mail"

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestRelay(client *redis.Client, next Sender) *Relay {
	relay := NewRelay(client, testQueue, next, slog.New(slog.NewTextHandler(io.Discard, nil)))
	relay.poll = 100 * time.Millisecond
	relay.backoff = 10 * time.Millisecond
	return relay
}

// runRelay runs relay until the returned stop func is called.
func runRelay(relay *Relay) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = relay.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

// rejectingSender fails every message addressed to reject and records the rest.
type rejectingSender struct {
	reject string

	mu       sync.Mutex
	attempts int
	msgs     []Message
}

func (s *rejectingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.To == s.reject {
		s.attempts++
		return errors.New("550 mailbox unavailable")
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *rejectingSender) delivered() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func (s *rejectingSender) failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func TestRedisQueue_RelayDelivers(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()

	queue := NewRedisQueue(client, testQueue)
	require.NoError(t, queue.Send(ctx, Message{To: "a@b.c", Subject: "s", Body: "b"}))
	require.NoError(t, queue.Send(ctx, Message{To: "d@e.f", Subject: "s", Body: "b"}))

	next := &recordingSender{}
	stop := runRelay(newTestRelay(client, next))

	assert.Eventually(t, func() bool { return len(next.sent()) == 2 }, 3*time.Second, 20*time.Millisecond)
	stop()

	sent := next.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@b.c", sent[0].To)
	assert.Equal(t, "d@e.f", sent[1].To)
}

func TestRelay_FailingMessageDoesNotBlockQueue(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()

	queue := NewRedisQueue(client, testQueue)
	require.NoError(t, queue.Send(ctx, Message{To: "bounce@example.com", Subject: "code"}))
	require.NoError(t, queue.Send(ctx, Message{To: "alice@example.com", Subject: "code"}))

	next := &rejectingSender{reject: "bounce@example.com"}
	relay := newTestRelay(client, next)
	stop := runRelay(relay)

	assert.Eventually(t, func() bool {
		n, err := client.LLen(ctx, DeadLetterKey(testQueue)).Result()
		return err == nil && n == 1
	}, 3*time.Second, 20*time.Millisecond)
	stop()

	delivered := next.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, "alice@example.com", delivered[0].To)
	assert.Equal(t, DefaultMaxAttempts, next.failures())

	remaining, err := client.LLen(ctx, testQueue).Result()
	require.NoError(t, err)
	assert.Zero(t, remaining)

	raw, err := client.LIndex(ctx, DeadLetterKey(testQueue), 0).Result()
	require.NoError(t, err)
	var parked queued
	require.NoError(t, json.Unmarshal([]byte(raw), &parked))
	assert.Equal(t, "bounce@example.com", parked.To)
	assert.Equal(t, DefaultMaxAttempts, parked.Attempts)
}

func TestRelay_AcceptsPlainMessagePayload(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()

	payload, err := json.Marshal(Message{To: "old@example.com", Subject: "s"})
	require.NoError(t, err)
	require.NoError(t, client.LPush(ctx, testQueue, payload).Err())
	require.NoError(t, client.LPush(ctx, testQueue, "not json").Err())

	next := &recordingSender{}
	stop := runRelay(newTestRelay(client, next))

	assert.Eventually(t, func() bool { return len(next.sent()) == 1 }, 3*time.Second, 20*time.Millisecond)
	stop()
	assert.Equal(t, "old@example.com", next.sent()[0].To)
}
