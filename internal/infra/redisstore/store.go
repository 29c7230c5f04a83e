// Package redisstore keeps the progression document and XP ledger in Redis,
// for deployments where several curio processes share one learner profile.
// Saves are checked against the stored revision under WATCH/MULTI.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curio-cabinet/curio/internal/domain"
)

// DefaultKey namespaces every key written by the store.
const DefaultKey = "curio:progress"

// Config holds Redis connection settings.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Key         string
	DialTimeout time.Duration
}

// DefaultConfig returns a local, unauthenticated configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		Key:         DefaultKey,
		DialTimeout: 5 * time.Second,
	}
}

// Store implements domain.StateStore and domain.XPJournal.
//
// Layout:
//
//	<key>          JSON progress document
//	<key>:xp       list of JSON XP events, newest at the head
//	<key>:xp:seq   counter used to assign event ids
type Store struct {
	client *redis.Client
	key    string
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Close releases the client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) stateKey() string  { return s.key }
func (s *Store) ledgerKey() string { return s.key + ":xp" }
func (s *Store) seqKey() string    { return s.key + ":xp:seq" }

// ─── Progress Document ──────────────────────────────────────────────────────

// LoadState implements domain.StateStore. Returns (nil, nil) on first run.
func (s *Store) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	data, err := s.client.Get(ctx, s.stateKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress state: %w", err)
	}
	var st domain.PersistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode progress state: %w", err)
	}
	return &st, nil
}

// SaveState implements domain.StateStore.
func (s *Store) SaveState(ctx context.Context, st domain.PersistedState) error {
	next := st
	next.Revision = st.Revision + 1
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode progress state: %w", err)
	}

	key := s.stateKey()
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		rev, err := documentRevision(current)
		if err != nil {
			return err
		}
		if rev != st.Revision {
			return fmt.Errorf("stored revision %d, saving over %d: %w", rev, st.Revision, domain.ErrStateConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("key changed during save: %w", domain.ErrStateConflict)
	}
	if err != nil {
		return fmt.Errorf("save progress state: %w", err)
	}
	return nil
}

// documentRevision reads the revision of a stored document. Empty data means
// nothing is stored yet.
func documentRevision(data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var head struct {
		Revision int64 `json:"revision"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("decode progress revision: %w", err)
	}
	return head.Revision, nil
}

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// AppendXPEvent implements domain.XPJournal.
func (s *Store) AppendXPEvent(ctx context.Context, ev domain.XPEvent) error {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("next xp event id: %w", err)
	}
	ev.ID = id
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := s.client.LPush(ctx, s.ledgerKey(), data).Err(); err != nil {
		return fmt.Errorf("append xp event: %w", err)
	}
	return nil
}

// ListXPEvents implements domain.XPJournal. Newest first; limit <= 0 means all.
func (s *Store) ListXPEvents(ctx context.Context, limit int) ([]domain.XPEvent, error) {
	raw, err := s.client.LRange(ctx, s.ledgerKey(), 0, rangeStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("list xp events: %w", err)
	}
	out := make([]domain.XPEvent, 0, len(raw))
	for _, item := range raw {
		ev, err := decodeEvent(item)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// ResetXPEvents implements domain.XPJournal.
func (s *Store) ResetXPEvents(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.ledgerKey(), s.seqKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reset xp ledger: %w", err)
	}
	return nil
}

func rangeStop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit) - 1
}

func encodeEvent(ev domain.XPEvent) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode xp event: %w", err)
	}
	return string(data), nil
}

func decodeEvent(s string) (domain.XPEvent, error) {
	var ev domain.XPEvent
	if err := json.Unmarshal([]byte(s), &ev); err != nil {
		return ev, fmt.Errorf("decode xp event: %w", err)
	}
	return ev, nil
}

var (
	_ domain.StateStore = (*Store)(nil)
	_ domain.XPJournal  = (*Store)(nil)
)
