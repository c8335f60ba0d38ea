// apps/go-server/internal/random/random.go
//
// Random draws for team selection and sequence growth.
// Responsibilities:
//   - Define the Source capability so callers can inject deterministic draws.
//   - Provide a crypto/rand backed Source for production.
//   - Validate inclusive ranges before drawing.

package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidRange is returned when a draw is requested with lo > hi.
var ErrInvalidRange = errors.New("invalid range: start is greater than end")

// Source yields uniform integers in [0, n). n is always > 0.
type Source interface {
	IntN(n int) int
}

// Draw returns a uniform integer in the inclusive range [lo, hi].
func Draw(src Source, lo, hi int) (int, error) {
	if lo > hi {
		return 0, fmt.Errorf("%w (%d > %d)", ErrInvalidRange, lo, hi)
	}
	n := hi - lo + 1
	if n <= 0 {
		// Width wrapped around: the range is wider than an int can count.
		return 0, fmt.Errorf("%w: [%d, %d] is too wide", ErrInvalidRange, lo, hi)
	}
	return lo + src.IntN(n), nil
}

// Crypto returns a Source backed by crypto/rand.
func Crypto() Source { return cryptoSource{} }

type cryptoSource struct{}

// IntN panics only if the system entropy source fails, which crypto/rand
// treats as unrecoverable.
func (cryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("random: read entropy: %v", err))
	}
	return int(v.Int64())
}
