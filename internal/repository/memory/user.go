package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/domain/user"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]user.User // key: ID
}

// NewUserRepository creates an empty in-memory user store.
func NewUserRepository() user.Repository {
	return &userRepository{users: make(map[string]user.User)}
}

// GetByEmail implements user.Repository.
func (m *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

// GetByID implements user.Repository.
func (m *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// Create implements user.Repository.
func (m *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if newUser.ID == "" {
		newUser.ID = uuid.New().String()
	}
	m.users[newUser.ID] = newUser
	return newUser, nil
}

// ListActive implements user.Repository.
func (m *userRepository) ListActive(ctx context.Context) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []user.User
	for _, u := range m.users {
		if u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListManagers implements user.Repository.
func (m *userRepository) ListManagers(ctx context.Context) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []user.User
	for _, u := range m.users {
		if u.Active && u.Role == user.RoleManager {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
