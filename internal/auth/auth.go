// Package auth authenticates users against the user store and issues
// HS256 JWTs for the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is deactivated")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
)

// UserSource is the slice of the user store the authenticator needs.
type UserSource interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

type Service struct {
	users      UserSource
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(users UserSource, signingKey, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		users:      users,
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Authenticate checks the credentials and returns a signed token plus
// the authenticated user. A wrong email and a wrong password return
// the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !u.VerifyPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	if !u.Active {
		return "", nil, ErrInactiveUser
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}

	return token, u, nil
}

func (s *Service) issueToken(u *user.User) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Email: u.Email.String(),
		Roles: u.Roles,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signingKey)
}

// Verify parses the token and loads the current user record, so role
// or activation changes take effect on the next request.
func (s *Service) Verify(ctx context.Context, tokenString string) (*user.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}

	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user", ErrTokenInvalid)
	}

	if !u.Active {
		return nil, ErrInactiveUser
	}

	return u, nil
}
