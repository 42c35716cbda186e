// Package auth issues and validates the portal's access tokens. Users live
// in Firestore with bcrypt password hashes; sessions are stateless HS256
// JWTs carrying the username and role list.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// Role names recognized by the portal.
const (
	// RoleConsulta grants read access to the sentence views.
	RoleConsulta = "consulta"
	// RoleAdmin additionally grants re-scan and mark-analyzed.
	RoleAdmin = "admin"
)

// ErrInvalidCredentials is returned on a bad username or password. The two
// cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken is returned when a token fails validation for any reason.
var ErrInvalidToken = errors.New("invalid token")

// UserSource is the minimal user lookup the service needs.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (*domain.Usuario, error)
}

// Claims is the decoded identity carried by a valid token.
type Claims struct {
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Service authenticates portal users and mints session tokens.
type Service struct {
	users  UserSource
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates an auth service signing tokens with secret. Tokens
// expire after ttl; zero means 24 hours.
func NewService(users UserSource, secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login validates the credentials and returns a signed token. A missing
// user and a wrong password both come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"roles":    user.Roles,
		"exp":      s.now().Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token string and extracts its claims.
func (s *Service) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if claims.Username == "" {
		return Claims{}, ErrInvalidToken
	}

	// JSON decoding yields []interface{} for the roles array.
	if raw, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, role)
			}
		}
	}

	return claims, nil
}
