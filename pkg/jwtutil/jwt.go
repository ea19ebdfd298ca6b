package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"ricemill-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers signature mismatch, structural corruption and expiry.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims carries the authenticated subject (username) and the standard
// expiry/issued-at claims.
type UserClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWT issues and validates HS256 tokens. It is constructed once at startup
// from configuration and passed down explicitly; there is no package-level
// signing state.
type JWT struct {
	signingKey []byte
	expiry     time.Duration
}

// New creates a JWT utility from configuration
func New(cfg *config.JWTConfig) *JWT {
	return &JWT{
		signingKey: []byte(cfg.SigningKey),
		expiry:     time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}
}

// GenerateToken creates a signed token for the given username with the
// configured absolute expiry
func (j *JWT) GenerateToken(username string) (string, error) {
	claims := &UserClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken validates the token and returns the claims
func (j *JWT) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.signingKey, nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
