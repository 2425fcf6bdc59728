package connect

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gc-digital-net/crosspost/internal/pkg/cache"
)

const (
	// PendingKeyPrefix namespaces pending authorizations in Redis.
	PendingKeyPrefix = "connect_state:"

	// PendingTTL bounds how long an in-flight authorization stays
	// redeemable.
	PendingTTL = 10 * time.Minute
)

// PendingAuthorization is the ephemeral record for one in-flight OAuth
// attempt. It lives in Redis under its state value and is consumed
// atomically on the first redemption attempt, successful or not.
type PendingAuthorization struct {
	State     string    `json:"state"`
	Platform  string    `json:"platform"`
	AccountID uint      `json:"account_id"`
	CallerID  uint      `json:"caller_id"`
	Verifier  string    `json:"verifier,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingStore persists pending authorizations keyed by state value.
type PendingStore interface {
	Save(p *PendingAuthorization) error
	// Redeem atomically fetches and destroys the record; a second call
	// with the same state fails ErrInvalidState.
	Redeem(state string) (*PendingAuthorization, error)
}

type redisPendingStore struct{}

// NewPendingStore returns the Redis-backed pending authorization store.
func NewPendingStore() PendingStore {
	return &redisPendingStore{}
}

func (s *redisPendingStore) Save(p *PendingAuthorization) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending authorization: %w", err)
	}
	return cache.Set(PendingKeyPrefix+p.State, data, PendingTTL)
}

func (s *redisPendingStore) Redeem(state string) (*PendingAuthorization, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	data, err := cache.GetDel(PendingKeyPrefix + state)
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("pending authorization lookup: %w", err)
	}

	var p PendingAuthorization
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, ErrInvalidState
	}
	return &p, nil
}

// GenerateState returns an unguessable value binding a callback to the
// request that initiated it.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
