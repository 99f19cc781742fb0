package util

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims - claims сессионного токена identity provider
// sub - id пользователя, sid - id сессии, azp - origin фронтенда, выпустившего токен
type SessionClaims struct {
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier проверяет RS256 подпись локально по публичному ключу провайдера
type JWTVerifier struct {
	publicKey         *rsa.PublicKey
	authorizedParties []string
	leeway            time.Duration
}

// NewJWTVerifier разбирает PEM ключ; в env переносы строк часто приходят как \n
func NewJWTVerifier(publicKeyPEM string, authorizedParties []string, leeway time.Duration) (*JWTVerifier, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(publicKeyPEM), `\n`, "\n")

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt public key: %w", err)
	}

	return &JWTVerifier{
		publicKey:         key,
		authorizedParties: authorizedParties,
		leeway:            leeway,
	}, nil
}

func (v *JWTVerifier) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return v.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	// при заданном списке токен без azp тоже отклоняется
	if len(v.authorizedParties) > 0 && !slices.Contains(v.authorizedParties, claims.AuthorizedParty) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
