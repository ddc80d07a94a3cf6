package user

import (
	"context"
	"sync"

	"familyhub/internal/auth/models"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in process memory, indexed by id and email.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// Create inserts user. Returns sentinel.ErrAlreadyUsed when the email is taken.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	c := *user
	s.users[user.ID] = &c
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *s.users[userID]
	return &c, nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, userID)
	return nil
}
