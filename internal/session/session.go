// Package session tracks who is logged in and which cart they are shopping with.
package session

import (
	"context"
	"sync"
	"time"

	"scango/internal/apperrors"

	"github.com/google/uuid"
)

// Role of a logged-in principal.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Session is the state bound to one login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CartID    string    `json:"cart_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session belongs to a store administrator.
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	if !s.ExpiresAt.IsZero() && m.now().After(s.ExpiresAt) {
		_ = m.Delete(ctx, id)
		return nil, apperrors.NotFound("session", id)
	}
	return &s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Manager opens, resolves and closes sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a Manager whose sessions live for ttl.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start opens a session for the given principal.
func (m *Manager) Start(ctx context.Context, userID, email, name string, role Role) (*Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the live session with id. Missing or expired sessions are
// reported as unauthorized.
func (m *Manager) Lookup(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrSessionExpired
		}
		return nil, err
	}
	return s, nil
}

// BindCart records the cart the session is shopping with.
func (m *Manager) BindCart(ctx context.Context, s *Session, cartID string) error {
	s.CartID = cartID
	return m.store.Save(ctx, s)
}

// End logs the session out.
func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
