package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"spotly/internal/cache"
)

const (
	oauthStateKeyPrefix = "oauth_state:"
	// OAuthStateTTL bounds how long a login attempt may take at the provider.
	OAuthStateTTL = 10 * time.Minute
)

// OAuthState is what the server remembers between redirect and callback.
type OAuthState struct {
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
}

// StateStoreInterface defines storage of pending OAuth logins.
type StateStoreInterface interface {
	Save(ctx context.Context, state string, data OAuthState) error
	Consume(ctx context.Context, state string) (*OAuthState, error)
}

// StateStore keeps OAuth state in Redis. Each state can be consumed once.
type StateStore struct {
	cache *cache.Client
	ttl   time.Duration
}

// Ensure StateStore implements StateStoreInterface
var _ StateStoreInterface = (*StateStore)(nil)

// NewStateStore creates a new state store.
func NewStateStore(cache *cache.Client) *StateStore {
	return &StateStore{cache: cache, ttl: OAuthStateTTL}
}

// Save stores state data with TTL.
func (s *StateStore) Save(ctx context.Context, state string, data OAuthState) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}
	return s.cache.Set(ctx, oauthStateKeyPrefix+state, payload, s.ttl)
}

// Consume returns and removes the state data.
func (s *StateStore) Consume(ctx context.Context, state string) (*OAuthState, error) {
	if state == "" {
		return nil, fmt.Errorf("oauth state not found")
	}
	data, err := s.cache.GetDel(ctx, oauthStateKeyPrefix+state)
	if err != nil || data == nil {
		return nil, fmt.Errorf("oauth state not found")
	}

	var out OAuthState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}
	return &out, nil
}
