package user

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("a user with this email already exists")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type (
	// Authenticator verifies ID tokens issued by the auth provider.
	Authenticator interface {
		VerifyToken(ctx context.Context, token string) (User, error)
	}

	// Directory manages accounts on the auth provider.
	Directory interface {
		GetByEmail(ctx context.Context, email string) (User, error)
		Create(ctx context.Context, nu NewUser) (User, error)
		UpdatePassword(ctx context.Context, id, pwd string) error
		SetAdmin(ctx context.Context, id string, isAdmin bool) error
	}
)
