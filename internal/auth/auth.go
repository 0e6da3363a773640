// Package auth turns signed session tokens into principals.
//
// Tokens are HS256 JWTs carrying the user's id, role and 2FA status. They
// are issued by the login flow (outside this service) and read from the
// session cookie or an Authorization: Bearer header.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOwner:
		return true
	}
	return false
}

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrInvalidToken    = errors.New("invalid session token")
)

// Principal is the authenticated user of a request.
type Principal struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	SessionID        string `json:"sessionId"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Claims is the JWT payload.
type Claims struct {
	jwt.StandardClaims
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role"`
	TwoFactor bool   `json:"tfa,omitempty"`
}

// TokenService signs and verifies session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a service signing with secret.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for p. A new session id is generated when p has none.
func (s *TokenService) Issue(p Principal) (string, error) {
	if p.UserID == "" || !p.Role.Valid() {
		return "", fmt.Errorf("%w: principal needs a user id and a known role", ErrInvalidToken)
	}
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}
	now := s.now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        p.SessionID,
			Issuer:    s.issuer,
			Subject:   p.UserID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		TwoFactor: p.TwoFactorEnabled,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its principal.
func (s *TokenService) Parse(raw string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Issuer != s.issuer || claims.Subject == "" || !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:           claims.Subject,
		Email:            claims.Email,
		Name:             claims.Name,
		Role:             claims.Role,
		SessionID:        claims.Id,
		TwoFactorEnabled: claims.TwoFactor,
	}, nil
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the request principal, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
