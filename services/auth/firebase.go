package authsvc

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core/user"
)

// Firebase verifies ID tokens and manages accounts with Firebase Authentication.
type Firebase struct {
	client *auth.Client
}

var (
	_ user.Authenticator = (*Firebase)(nil)
	_ user.Directory     = (*Firebase)(nil)
)

func NewFirebase(ctx context.Context, app *firebase.App) (*Firebase, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase auth")
	}
	return &Firebase{client: client}, nil
}

func (fb *Firebase) VerifyToken(ctx context.Context, token string) (user.User, error) {
	tok, err := fb.client.VerifyIDToken(ctx, token)
	if err != nil {
		return user.User{}, user.ErrInvalidToken
	}

	usr := user.User{ID: tok.UID, Roles: user.RolesFromClaims(tok.Claims)}
	usr.Email, _ = tok.Claims["email"].(string)
	usr.Name, _ = tok.Claims["name"].(string)
	usr.EmailVerified, _ = tok.Claims["email_verified"].(bool)
	return usr, nil
}

func (fb *Firebase) GetByEmail(ctx context.Context, email string) (user.User, error) {
	rec, err := fb.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return toUser(rec), nil
}

func (fb *Firebase) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	params := (&auth.UserToCreate{}).
		Email(nu.Email).
		Password(nu.Password).
		DisplayName(nu.Name)

	rec, err := fb.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return toUser(rec), nil
}

func (fb *Firebase) UpdatePassword(ctx context.Context, id, pwd string) error {
	_, err := fb.client.UpdateUser(ctx, id, (&auth.UserToUpdate{}).Password(pwd))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return user.ErrNotFound
		}
		return errors.Wrap(err, "updating password")
	}
	return nil
}

// SetAdmin sets or clears the admin custom claim. It shows up in ID tokens issued afterwards.
func (fb *Firebase) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	err := fb.client.SetCustomUserClaims(ctx, id, map[string]interface{}{user.RoleAdmin: isAdmin})
	if err != nil {
		if auth.IsUserNotFound(err) {
			return user.ErrNotFound
		}
		return errors.Wrap(err, "setting custom claims")
	}
	return nil
}

func toUser(rec *auth.UserRecord) user.User {
	return user.User{
		ID:            rec.UID,
		Name:          rec.DisplayName,
		Email:         rec.Email,
		EmailVerified: rec.EmailVerified,
		Roles:         user.RolesFromClaims(rec.CustomClaims),
	}
}
