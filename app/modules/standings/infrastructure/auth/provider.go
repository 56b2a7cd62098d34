// Package standingsauth validates the bearer tokens tab-room staff use for
// write operations.
package standingsauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the access level a token grants.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Claims is what a validated token says about its bearer.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider defines the interface for JWT token operations.
type Provider interface {
	// GenerateToken creates a signed HS256 token for subject with role.
	GenerateToken(subject string, role Role, ttl time.Duration) (string, error)

	// ValidateToken validates a token and returns its claims if valid.
	ValidateToken(tokenString string) (*Claims, error)
}

type tabClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

type provider struct {
	secret []byte
	issuer string
}

// NewProvider creates a new JWT provider.
func NewProvider(secret, issuer string) (Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &provider{secret: []byte(secret), issuer: issuer}, nil
}

func (p *provider) GenerateToken(subject string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tabClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    p.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &tabClaims{}, func(token *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tabClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{Subject: claims.Subject, Role: Role(claims.Role)}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
