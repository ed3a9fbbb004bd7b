// Package auth issues and reads the short-lived rejoin tokens that let a
// disconnected player prove a prior (room, player) identity.
package auth

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type (
	// Tokenizer creates and reads rejoin tokens.
	Tokenizer interface {
		Create(roomID, playerID string) (string, error)
		Read(tokenString string) (roomID, playerID string, err error)
	}

	// TokenizerConfig contains fields which describe a Tokenizer.
	TokenizerConfig struct {
		// KeyReader is used to generate the signing key.
		KeyReader io.Reader
		// TimeFunc supplies the current time, used to bound token validity.
		TimeFunc func() time.Time
		// ValidDur is how long a token stays valid after issuing.
		ValidDur time.Duration
	}

	jwtTokenizer struct {
		method   jwt.SigningMethod
		key      interface{}
		timeFunc func() time.Time
		validDur time.Duration
	}

	// rejoinClaims binds the token to a room; the player id is the subject.
	rejoinClaims struct {
		RoomID string `json:"roomId"`
		jwt.RegisteredClaims
	}
)

// NewTokenizer creates a Tokenizer with a random signing key.
func (cfg TokenizerConfig) NewTokenizer() (Tokenizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating tokenizer: validation: %w", err)
	}
	key := make([]byte, 64)
	if _, err := io.ReadFull(cfg.KeyReader, key); err != nil {
		return nil, fmt.Errorf("generating tokenizer key: %w", err)
	}
	t := jwtTokenizer{
		method:   jwt.SigningMethodHS256,
		key:      key,
		timeFunc: cfg.TimeFunc,
		validDur: cfg.ValidDur,
	}
	return t, nil
}

// validate ensures the configuration has no errors.
func (cfg TokenizerConfig) validate() error {
	switch {
	case cfg.KeyReader == nil:
		return fmt.Errorf("key reader required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ValidDur <= 0:
		return fmt.Errorf("positive valid duration required")
	}
	return nil
}

// Create converts the room/player pair to a signed token string.
func (j jwtTokenizer) Create(roomID, playerID string) (string, error) {
	now := j.timeFunc()
	claims := rejoinClaims{
		RoomID: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validDur)),
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.key)
}

// Read extracts the room and player ids from the token string.  The parser's
// claim validation is disabled because it checks against the system clock;
// validity is checked against the tokenizer's time func instead.
func (j jwtTokenizer) Read(tokenString string) (string, string, error) {
	var claims rejoinClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(tokenString, &claims, j.keyFunc); err != nil {
		return "", "", err
	}
	now := j.timeFunc()
	switch {
	case claims.ExpiresAt == nil || now.After(claims.ExpiresAt.Time):
		return "", "", fmt.Errorf("token expired")
	case claims.NotBefore != nil && now.Before(claims.NotBefore.Time):
		return "", "", fmt.Errorf("token not yet valid")
	}
	return claims.RoomID, claims.Subject, nil
}

// keyFunc ensures the signing method of the token is correct before returning the key.
func (j jwtTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != j.method {
		return nil, fmt.Errorf("incorrect token signing method")
	}
	return j.key, nil
}
