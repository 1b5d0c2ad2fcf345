// Package security implements account management and token based
// authentication: bcrypt password storage, HS256 JWT issuance and
// verification, and the register/login/profile operations built on them.
package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/errors"
)

const tokenIssuer = "soundguard"

// TokenProvider issues and verifies JWT access tokens.
type TokenProvider struct {
	secret []byte
	expiry time.Duration
}

// NewTokenProvider creates a token provider from the security settings.
func NewTokenProvider(settings *conf.Settings) *TokenProvider {
	expiry := settings.Security.TokenExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenProvider{
		secret: []byte(settings.Security.JWTSecret),
		expiry: expiry,
	}
}

// GenerateToken issues a signed token for the given user id.
func (p *TokenProvider) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Context("operation", "sign_token").
			Build()
	}
	return signed, nil
}

// VerifyToken validates a token string and returns the user id it was issued
// for. Expired, malformed or foreign-signed tokens all fail verification.
func (p *TokenProvider) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Newf("unexpected signing method %v", token.Header["alg"]).
					Component("security").
					Category(errors.CategoryAuth).
					Build()
			}
			return p.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Context("operation", "verify_token").
			Build()
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.Newf("token carries no subject").
			Component("security").
			Category(errors.CategoryAuth).
			Build()
	}
	return claims.Subject, nil
}
