package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/core/user"
)

func TestLocal_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(core.NewTestConfig())

	admin := user.User{ID: "u1", Name: "Admin", Email: "admin@test.local", Roles: []string{user.RoleStudent, user.RoleAdmin}}
	token, err := l.Issue(admin)
	require.NoError(t, err)

	usr, err := l.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin, usr)

	student := user.User{ID: "u2", Email: "s@test.local"}
	token, err = l.Issue(student)
	require.NoError(t, err)
	usr, err = l.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.False(t, usr.IsAdmin())
	assert.True(t, usr.HasRole(user.RoleStudent))
}

func TestLocal_VerifyToken_invalid(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	l := NewLocal(conf)

	sign := func(claims jwt.Claims, key string) string {
		ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return ss
	}
	expired := l.GetUserClaims(user.User{ID: "u1"})
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	otherIssuer := l.GetUserClaims(user.User{ID: "u1"})
	otherIssuer.Issuer = "someone-else"
	noAudience := l.GetUserClaims(user.User{ID: "u1"})
	noAudience.Audience = ""

	certToken, err := certificate.NewService(nil, nil, conf).Token(certificate.Certificate{ResultID: "r1", CertificateID: "CERT-001"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", sign(l.GetUserClaims(user.User{ID: "u1"}), "other-key")},
		{"expired", sign(expired, conf.SecretKey)},
		{"other issuer", sign(otherIssuer, conf.SecretKey)},
		{"no subject", sign(l.GetUserClaims(user.User{}), conf.SecretKey)},
		{"no audience", sign(noAudience, conf.SecretKey)},
		{"certificate verification token", certToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.VerifyToken(ctx, tt.token)
			assert.Equal(t, user.ErrInvalidToken, err)
		})
	}
}
