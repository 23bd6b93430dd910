// Package session stores the ephemeral recovery-session state. A session
// exists only between a successful recovery-phrase check and the password
// overwrite (or expiry); holding no session is the AwaitingPhrase state of
// the recovery flow.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means no live session exists for the id
var ErrNotFound = errors.New("session: not found")

// Recovery is a live recovery session: the tenant whose phrase was verified
type Recovery struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists recovery sessions with a TTL
type Store interface {
	Put(ctx context.Context, rec Recovery, ttl time.Duration) error
	Get(ctx context.Context, id string) (Recovery, error)
	Delete(ctx context.Context, id string) error
}
