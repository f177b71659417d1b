package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/entity"
)

// ErrInvalidToken covers malformed, expired and foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload.
type Claims struct {
	jwt.StandardClaims
	Username string      `json:"username"`
	Role     entity.Role `json:"role"`
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds Tokens from auth configuration.
func NewTokens(cfg config.Config) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		ttl:    cfg.Auth.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a token for user and returns it with its expiry.
func (t *Tokens) Issue(user *entity.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("nil user")
	}
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
		Username: user.Username,
		Role:     user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies raw and returns the caller it identifies.
func (t *Tokens) Parse(raw string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(t.issuer, true) {
		return Principal{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: id, Username: claims.Username, Role: claims.Role}, nil
}
