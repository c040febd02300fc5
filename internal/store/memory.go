package store

import (
	"context"
	"sync"
	"time"

	"confer/internal/models"
)

// MemoryStore keeps users in process memory. It backs local development
// without a database and the service tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrDuplicateEmail
	}
	s.byID[u.ID] = u.Clone()
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) FindByResetTokenHash(_ context.Context, hash string, now time.Time) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if resetMatches(u, hash, now) {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *models.User) bool {
		u.LastLogin = at
		u.UpdatedAt = at
		return true
	})
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	return s.update(id, func(u *models.User) bool {
		u.PasswordHash = passwordHash
		u.ResetPasswordToken, u.ResetPasswordExpire = nil, nil
		u.UpdatedAt = at
		return true
	})
}

func (s *MemoryStore) SetResetToken(_ context.Context, id, hash string, expire, at time.Time) error {
	return s.update(id, func(u *models.User) bool {
		u.ResetPasswordToken, u.ResetPasswordExpire = &hash, &expire
		u.UpdatedAt = at
		return true
	})
}

func (s *MemoryStore) ResetPassword(_ context.Context, id, hash, passwordHash string, now time.Time) error {
	return s.update(id, func(u *models.User) bool {
		if !resetMatches(u, hash, now) {
			return false
		}
		u.PasswordHash = passwordHash
		u.ResetPasswordToken, u.ResetPasswordExpire = nil, nil
		u.UpdatedAt = now
		return true
	})
}

// update applies fn under the write lock; fn reports whether the row matched.
func (s *MemoryStore) update(id string, fn func(u *models.User) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok || !fn(u) {
		return ErrNotFound
	}
	return nil
}

func resetMatches(u *models.User, hash string, now time.Time) bool {
	return u.ResetPasswordToken != nil && u.ResetPasswordExpire != nil &&
		*u.ResetPasswordToken == hash && u.ResetPasswordExpire.After(now)
}
