package authsvc

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
)

// Claims represents the identity transmitted via a locally signed JWT.
type Claims struct {
	jwt.StandardClaims
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Admin         bool   `json:"admin,omitempty"`
}

// sessionAudience marks login tokens; tokens minted for other purposes carry another audience.
const sessionAudience = "session"

// Local signs and verifies HS256 tokens with the app's secret key. It stands in for the auth
// provider in DEV and in tests.
type Local struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

var _ user.Authenticator = (*Local)(nil)

func NewLocal(conf *core.Config) *Local {
	return &Local{key: []byte(conf.SecretKey), issuer: conf.AppName, ttl: 24 * time.Hour}
}

func (l *Local) GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    l.issuer,
			Audience:  sessionAudience,
			Subject:   usr.ID,
			ExpiresAt: now.Add(l.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:          usr.Name,
		Email:         usr.Email,
		EmailVerified: usr.EmailVerified,
		Admin:         usr.IsAdmin(),
	}
}

// Issue generates a signed token representing usr.
func (l *Local) Issue(usr user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, l.GetUserClaims(usr))
	ss, err := token.SignedString(l.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (l *Local) VerifyToken(_ context.Context, token string) (user.User, error) {
	claims := new(Claims)
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return l.key, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" || claims.Issuer != l.issuer ||
		claims.Audience != sessionAudience {
		return user.User{}, user.ErrInvalidToken
	}

	roles := user.RolesFromClaims(map[string]interface{}{user.RoleAdmin: claims.Admin})
	return user.User{
		ID:            claims.Subject,
		Name:          claims.Name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Roles:         roles,
	}, nil
}
