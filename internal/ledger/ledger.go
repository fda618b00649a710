// Package ledger provides cross-run send deduplication backed by Redis.
// Once a (day, recipient, event) triple has been delivered, repeat runs
// skip it until the ledger entry expires.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fundingforward/outreach/internal/domain"
)

// Ledger marks delivered triples with SETNX so exactly one run wins the
// right to send each email.
type Ledger struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures a Ledger.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Ledger, error) {
	if opts.TTL == 0 {
		opts.TTL = 240 * time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Ledger{client: client, ttl: opts.TTL}, nil
}

// NewWithClient wraps an existing client, primarily for tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Ledger {
	if ttl == 0 {
		ttl = 240 * time.Hour
	}
	return &Ledger{client: client, ttl: ttl}
}

func key(day domain.Day, recipientID, eventID string) string {
	return fmt.Sprintf("outreach:sent:%s:%s:%s", day, recipientID, eventID)
}

// MarkIfFirst atomically claims a triple. It returns true when this call
// is the first to claim it; false means the email was already sent by an
// earlier run and must be skipped.
func (l *Ledger) MarkIfFirst(ctx context.Context, day domain.Day, recipientID, eventID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, key(day, recipientID, eventID),
		time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("ledger setnx: %w", err)
	}
	return ok, nil
}

// Unmark releases a claim, used when a claimed send failed permanently
// so a later run can retry it.
func (l *Ledger) Unmark(ctx context.Context, day domain.Day, recipientID, eventID string) error {
	return l.client.Del(ctx, key(day, recipientID, eventID)).Err()
}

// Close releases the underlying Redis connection.
func (l *Ledger) Close() error {
	return l.client.Close()
}
