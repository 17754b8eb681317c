package router

import (
	"context"
	"sync"
	"time"

	"go-auth-core/internal/model"
	"go-auth-core/internal/repository"
	"go-auth-core/internal/security"
)

type memoryStore struct {
	mu     sync.Mutex
	users  map[int64]model.User
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]model.User{}}
}

func (m *memoryStore) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	return m.findBy(func(u model.User) bool { return u.Username == username })
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	return m.findBy(func(u model.User) bool { return u.Email == email })
}

func (m *memoryStore) findBy(match func(model.User) bool) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memoryStore) Insert(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return model.User{}, model.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return model.User{}, model.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryStore) Update(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLogin = &at
	m.users[id] = u
	return nil
}

func (m *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, m)
}

func (m *memoryStore) setActive(id int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.IsActive = active
	m.users[id] = u
}

type captureNotifier struct {
	mu    sync.Mutex
	token string
}

func (n *captureNotifier) NotifyPasswordReset(_ context.Context, _ model.User, token security.IssuedToken) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.token = token.Value
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token
}
