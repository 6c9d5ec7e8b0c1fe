package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// AuthMock is an in-memory Authenticator and Directory for tests and local development.
type AuthMock struct {
	mu     sync.RWMutex
	users  map[string]User   // {id: User}
	pwds   map[string]string // {id: password}
	tokens map[string]string // {token: id}
}

var (
	_ Authenticator = (*AuthMock)(nil)
	_ Directory     = (*AuthMock)(nil)
)

func NewAuthMock() *AuthMock {
	return &AuthMock{
		users:  make(map[string]User),
		pwds:   make(map[string]string),
		tokens: make(map[string]string),
	}
}

// Issue registers usr (if needed) and returns a token that verifies as usr.
func (m *AuthMock) Issue(usr User) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	m.users[usr.ID] = usr
	token := "tok-" + uuid.NewString()
	m.tokens[token] = usr.ID
	return token
}

func (m *AuthMock) VerifyToken(_ context.Context, token string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tokens[token]
	if !ok {
		return User{}, ErrInvalidToken
	}
	return m.users[id], nil
}

func (m *AuthMock) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, usr := range m.users {
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *AuthMock) Create(_ context.Context, nu NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, usr := range m.users {
		if strings.EqualFold(usr.Email, nu.Email) {
			return User{}, ErrEmailExists
		}
	}
	usr := User{ID: uuid.NewString(), Name: nu.Name, Email: nu.Email, Roles: []string{RoleStudent}}
	m.users[usr.ID] = usr
	m.pwds[usr.ID] = nu.Password
	return usr, nil
}

func (m *AuthMock) UpdatePassword(_ context.Context, id, pwd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	m.pwds[id] = pwd
	return nil
}

func (m *AuthMock) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	usr, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	usr.Roles = []string{RoleStudent}
	if isAdmin {
		usr.Roles = append(usr.Roles, RoleAdmin)
	}
	m.users[id] = usr
	return nil
}

// Password returns the password stored for id.
func (m *AuthMock) Password(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pwds[id]
}
