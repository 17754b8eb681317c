package service

import (
	"context"
	"sync"
	"time"

	"go-auth-core/internal/model"
	"go-auth-core/internal/repository"
)

// memoryStore enforces the same uniqueness rules as the users table.
type memoryStore struct {
	mu      sync.Mutex
	users   map[int64]model.User
	nextID  int64
	inserts int
	updates int
	failOn  map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]model.User{}, failOn: map[string]error{}}
}

func (m *memoryStore) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["find"]; err != nil {
		return model.User{}, err
	}
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

	if err := m.failOn["find"]; err != nil {
		return model.User{}, err
	}
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

	if err := m.failOn["insert"]; err != nil {
		return model.User{}, err
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return model.User{}, model.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return model.User{}, model.ErrDuplicateEmail
		}
	}

	m.nextID++
	now := time.Now().UTC()
	u.ID = m.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = u
	m.inserts++
	return u, nil
}

func (m *memoryStore) Update(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["update"]; err != nil {
		return err
	}
	if _, ok := m.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = u
	m.updates++
	return nil
}

func (m *memoryStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["update"]; err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLogin = &at
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	m.updates++
	return nil
}

func (m *memoryStore) setPasswordHash(id int64, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.PasswordHash = hash
	m.users[id] = u
}

func (m *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, m)
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memoryStore) get(id int64) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memoryStore) setActive(id int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.IsActive = active
	m.users[id] = u
}
