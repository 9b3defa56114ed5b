package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"vsireport/internal/config"
)

var (
	// ErrNotFound reports a lookup miss. Callers treat it as "no snapshot",
	// not a failure.
	ErrNotFound = errors.New("snapshot: document not found")
	// ErrExists reports a create conflict; the caller falls back to an
	// update of the existing document.
	ErrExists = errors.New("snapshot: document already exists")
)

// Store is the get/put/update interface over the snapshot document store,
// keyed by guest identifier.
type Store interface {
	Get(ctx context.Context, guestID string) (*Document, error)
	Create(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	Upsert(ctx context.Context, doc *Document) error
}

// Reader is the read-only view the report builder uses for enrichment.
type Reader interface {
	Get(ctx context.Context, guestID string) (*Document, error)
}

// RedisStore keeps one JSON document per guest id.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects a store to the configured Redis instance.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{rdb: rdb, prefix: "vsistats:"}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) key(guestID string) string {
	return s.prefix + guestID
}

// Get returns the snapshot for a guest, or ErrNotFound on a miss.
func (s *RedisStore) Get(ctx context.Context, guestID string) (*Document, error) {
	payload, err := s.rdb.Get(ctx, s.key(guestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot get %s: %w", guestID, err)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("snapshot decode %s: %w", guestID, err)
	}
	return &doc, nil
}

// Create stores a new document, failing with ErrExists when the guest
// already has one.
func (s *RedisStore) Create(ctx context.Context, doc *Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.key(doc.GuestID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("snapshot create %s: %w", doc.GuestID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Update replaces an existing document via read-modify-write. Every field
// is overwritten with the current observation; conflicts resolve
// last-writer-wins with no merge.
func (s *RedisStore) Update(ctx context.Context, doc *Document) error {
	if _, err := s.Get(ctx, doc.GuestID); err != nil {
		return err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(doc.GuestID), payload, 0).Err(); err != nil {
		return fmt.Errorf("snapshot update %s: %w", doc.GuestID, err)
	}
	return nil
}

// Upsert attempts a create and falls back to updating the existing
// document on conflict.
func (s *RedisStore) Upsert(ctx context.Context, doc *Document) error {
	err := s.Create(ctx, doc)
	if errors.Is(err, ErrExists) {
		return s.Update(ctx, doc)
	}
	return err
}
