package attendance

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/pkg/errors"
)

var (
	nowFunc  = time.Now // mockable
	randRead = rand.Read

	// ErrEntropyUnavailable signals that the secure random source failed;
	// callers must surface it and never fall back to a predictable code.
	ErrEntropyUnavailable = errors.New("secure random source unavailable")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Mint issues a fresh attendance token valid for the given number of
// minutes. The code pairs a second-resolution timestamp with a random
// suffix so two mints within the same second can never collide.
func Mint(validityMinutes int) (Token, error) {
	if validityMinutes <= 0 {
		return Token{}, errors.Errorf("validity must be positive, got %d", validityMinutes)
	}

	now := nowFunc()
	suffix := make([]byte, 5)
	if _, err := randRead(suffix); err != nil {
		return Token{}, errors.Wrap(ErrEntropyUnavailable, err.Error())
	}

	return Token{
		Code:      "T" + now.Format("02150405") + "-" + b32.EncodeToString(suffix),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Duration(validityMinutes) * time.Minute),
	}, nil
}
