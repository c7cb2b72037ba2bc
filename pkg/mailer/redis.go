package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMaxAttempts is how many deliveries a Relay tries before it parks a
// message on the dead-letter list.
const DefaultMaxAttempts = 5

// queued is the payload stored on the list.
type queued struct {
	Message
	Attempts int `json:"attempts,omitempty"`
}

// DeadLetterKey names the list that holds messages a Relay gave up on.
func DeadLetterKey(key string) string {
	return key + ":dead"
}

// RedisQueue pushes messages onto a Redis list for a Relay to deliver.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(queued{Message: msg})
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Relay drains a RedisQueue list into another Sender. A message that fails
// goes to the back of the queue; after maxAttempts failures it moves to
// DeadLetterKey(key).
type Relay struct {
	client      *redis.Client
	key         string
	next        Sender
	logger      *slog.Logger
	poll        time.Duration
	backoff     time.Duration
	maxAttempts int
}

func NewRelay(client *redis.Client, key string, next Sender, logger *slog.Logger) *Relay {
	return &Relay{
		client:      client,
		key:         key,
		next:        next,
		logger:      logger,
		poll:        5 * time.Second,
		backoff:     10 * time.Second,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Run delivers queued messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("mail relay started", "queue", r.key)
	for {
		if ctx.Err() != nil {
			return nil
		}

		delivered, err := r.deliverOne(ctx)
		if err != nil {
			r.logger.Error("mail relay", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.backoff):
			}
			continue
		}
		if delivered {
			r.logger.Debug("mail relayed")
		}
	}
}

func (r *Relay) deliverOne(ctx context.Context) (bool, error) {
	res, err := r.client.BRPop(ctx, r.poll, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("dequeue mail: %w", err)
	}

	// BRPop returns [key, value].
	payload := res[1]

	var item queued
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		r.logger.Warn("dropping malformed mail payload", "error", err)
		return false, nil
	}

	sendErr := r.next.Send(ctx, item.Message)
	if sendErr == nil {
		return true, nil
	}

	item.Attempts++
	requeue, err := json.Marshal(item)
	if err != nil {
		return false, err
	}

	// Push with a fresh context so a shutdown mid-send does not lose the message.
	pushCtx := context.Background()
	if item.Attempts >= r.maxAttempts {
		r.logger.Error("mail undeliverable, moved to dead letters",
			"to", item.To, "attempts", item.Attempts, "error", sendErr)
		if err := r.client.LPush(pushCtx, DeadLetterKey(r.key), requeue).Err(); err != nil {
			r.logger.Error("dead-letter mail failed, message lost", "to", item.To, "error", err)
		}
		return false, nil
	}

	// The back of the queue, so later messages are not held up behind this one.
	if err := r.client.LPush(pushCtx, r.key, requeue).Err(); err != nil {
		r.logger.Error("requeue mail failed, message lost", "to", item.To, "error", err)
	}
	return false, fmt.Errorf("send mail to %s (attempt %d): %w", item.To, item.Attempts, sendErr)
}
