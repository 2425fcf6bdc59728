package connect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/oauth2"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/app/repository"
)

// RefreshMargin is the safety window before token expiry inside which a
// refresh is attempted ahead of a publish.
const RefreshMargin = 5 * time.Minute

// Manager owns the OAuth handshake per platform, the pending-authorization
// lifecycle and the stored credential records. The scheduler only ever reads
// connections through EnsureFresh.
type Manager struct {
	providers map[string]Provider
	pending   PendingStore
	conns     repository.ConnectionRepository

	// one refresh at a time per connection; concurrent publishers for the
	// same platform share the result instead of racing the token endpoint
	refreshMu  sync.Mutex
	refreshing map[uint]*sync.Mutex
}

// NewManager wires the connection manager from its collaborators.
func NewManager(providers map[string]Provider, pending PendingStore, conns repository.ConnectionRepository) *Manager {
	return &Manager{
		providers:  providers,
		pending:    pending,
		conns:      conns,
		refreshing: make(map[uint]*sync.Mutex),
	}
}

// Provider returns the variant registered for a platform.
func (m *Manager) Provider(platform string) (Provider, error) {
	p, ok := m.providers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return p, nil
}

// Initiate starts the OAuth flow for one platform: it generates the PKCE
// verifier where the variant requires one, binds a fresh CSRF state to the
// target account and the calling operator, persists the pending record with
// a short TTL and returns the authorization URL.
func (m *Manager) Initiate(platform string, accountID, callerID uint) (string, error) {
	provider, err := m.Provider(platform)
	if err != nil {
		return "", err
	}

	state, err := GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	p := &PendingAuthorization{
		State:     state,
		Platform:  platform,
		AccountID: accountID,
		CallerID:  callerID,
		CreatedAt: time.Now(),
	}
	if provider.UsesPKCE() {
		p.Verifier = oauth2.GenerateVerifier()
	}

	if err := m.pending.Save(p); err != nil {
		return "", fmt.Errorf("failed to store pending authorization: %w", err)
	}

	return provider.BuildAuthURL(state, p.Verifier), nil
}

// Complete finishes the flow on callback. The pending record is consumed
// atomically and unconditionally, including on failure paths, so a
// code/verifier pair can never be replayed.
func (m *Manager) Complete(ctx context.Context, platform, code, state string, callerID uint) (*models.SocialConnection, error) {
	provider, err := m.Provider(platform)
	if err != nil {
		return nil, err
	}

	p, err := m.pending.Redeem(state)
	if err != nil {
		return nil, err
	}
	if p.Platform != platform {
		return nil, ErrInvalidState
	}
	if p.CallerID != callerID {
		return nil, ErrUnauthenticated
	}

	token, err := provider.ExchangeCode(ctx, code, p.Verifier)
	if err != nil {
		return nil, err
	}

	profile, err := provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	conn := &models.SocialConnection{
		UserID:       p.AccountID,
		Platform:     platform,
		ExternalID:   profile.ExternalID,
		Handle:       profile.Handle,
		AvatarURL:    profile.AvatarURL,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       scopeString(token),
		Status:       models.ConnectionStatusActive,
	}
	if !token.Expiry.IsZero() {
		t := token.Expiry
		conn.TokenExpiresAt = &t
	}

	if err := m.conns.Upsert(conn); err != nil {
		return nil, fmt.Errorf("failed to persist connection: %w", err)
	}

	log.Infof("[Connect] Linked %s account %s for user %d", platform, profile.Handle, p.AccountID)
	return conn, nil
}

// EnsureFresh returns a connection whose access token is valid for at least
// the refresh margin, refreshing in place when possible. A missing or
// rejected refresh token is terminal: the operator has to reconnect.
func (m *Manager) EnsureFresh(ctx context.Context, conn *models.SocialConnection) (*models.SocialConnection, error) {
	if !conn.ExpiresWithin(RefreshMargin) {
		return conn, nil
	}

	mu := m.connLock(conn.ID)
	mu.Lock()
	defer mu.Unlock()

	// Another publisher may have refreshed while we waited on the lock.
	fresh, err := m.conns.GetByUserAndPlatform(conn.UserID, conn.Platform)
	if err == nil && !fresh.ExpiresWithin(RefreshMargin) {
		return fresh, nil
	}
	if err == nil {
		conn = fresh
	}

	if conn.RefreshToken == "" {
		m.markExpired(conn)
		return nil, fmt.Errorf("%w: %s connection %d has no refresh token", ErrReauthorizationRequired, conn.Platform, conn.ID)
	}

	provider, err := m.Provider(conn.Platform)
	if err != nil {
		return nil, err
	}

	token, err := provider.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		m.markExpired(conn)
		return nil, fmt.Errorf("%w: %v", ErrReauthorizationRequired, err)
	}

	conn.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		conn.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		t := token.Expiry
		conn.TokenExpiresAt = &t
	}
	conn.Status = models.ConnectionStatusActive

	if err := m.conns.UpdateTokens(conn); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.Infof("[Connect] Refreshed %s credentials for user %d", conn.Platform, conn.UserID)
	return conn, nil
}

// Resolve loads the active connection for an account on a platform.
func (m *Manager) Resolve(userID uint, platform string) (*models.SocialConnection, error) {
	conn, err := m.conns.GetByUserAndPlatform(userID, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d platform %s", ErrNoConnection, userID, platform)
	}
	if !conn.IsActive() {
		return nil, fmt.Errorf("%w: %s connection is %s", ErrReauthorizationRequired, platform, conn.Status)
	}
	return conn, nil
}

// Connections lists every connection an account has, active or not.
func (m *Manager) Connections(userID uint) ([]models.SocialConnection, error) {
	return m.conns.ListByUserID(userID)
}

// Deactivate disables a connection on operator request. The record stays so
// publish history remains attributable; a later Complete reactivates it.
func (m *Manager) Deactivate(userID uint, platform string) error {
	conn, err := m.conns.GetByUserAndPlatform(userID, platform)
	if err != nil {
		return fmt.Errorf("%w: user %d platform %s", ErrNoConnection, userID, platform)
	}
	return m.conns.SetStatus(conn.ID, models.ConnectionStatusInactive)
}

func (m *Manager) markExpired(conn *models.SocialConnection) {
	if err := m.conns.SetStatus(conn.ID, models.ConnectionStatusExpired); err != nil {
		log.Errorf("[Connect] Failed to mark connection %d expired: %v", conn.ID, err)
	}
}

func (m *Manager) connLock(id uint) *sync.Mutex {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	mu, ok := m.refreshing[id]
	if !ok {
		mu = &sync.Mutex{}
		m.refreshing[id] = mu
	}
	return mu
}

func scopeString(token *oauth2.Token) string {
	if s, ok := token.Extra("scope").(string); ok {
		return s
	}
	return ""
}
