// Package session holds the staff login state. A Session is created when the
// shared password is accepted, looked up on every staff request and removed
// on logout. Sessions live in the same key-value store as the table cache, so
// with Redis every server instance sees the same logins.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"asthma-care-server/internal/store"
)

// ErrNotFound means the session never existed, expired or was ended.
var ErrNotFound = errors.New("session not found")

// Session is the per-browser staff login.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the session is still valid at now.
func (s Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Registry tracks live sessions so logout takes effect before the token expires.
type Registry struct {
	kv  store.KVStore
	ttl time.Duration
	now func() time.Time
}

// NewRegistry creates a registry whose sessions last ttl.
func NewRegistry(kv store.KVStore, ttl time.Duration) *Registry {
	return &Registry{kv: kv, ttl: ttl, now: time.Now}
}

func key(id string) string {
	return "asthma:session:" + id
}

// Start opens a new session.
func (r *Registry) Start(ctx context.Context) (Session, error) {
	now := r.now()
	s := Session{
		ID:        uuid.New().String(),
		StartedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return Session{}, err
	}
	if err := r.kv.Set(ctx, key(s.ID), string(data), r.ttl); err != nil {
		return Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	return s, nil
}

// Get returns the live session with id, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (Session, error) {
	raw, err := r.kv.Get(ctx, key(id))
	if errors.Is(err, store.ErrCacheMiss) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	if !s.Active(r.now()) {
		_ = r.kv.Delete(ctx, key(id))
		return Session{}, ErrNotFound
	}
	return s, nil
}

// End closes the session with id. Ending an unknown session is not an error.
func (r *Registry) End(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, key(id))
}
