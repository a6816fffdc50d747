// Package random provides the randomness abstraction consumed by battle
// resolution, plus its production and deterministic implementations.
package random

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// Error kinds reported by sources.
var (
	// ErrTimeout reports that the provider did not answer within the request timeout.
	ErrTimeout = errors.New("random source timed out")
	// ErrUnavailable reports a network failure or an unexpected HTTP status.
	ErrUnavailable = errors.New("random source unavailable")
	// ErrMalformed reports a response body that is not a float in [0, 1).
	ErrMalformed = errors.New("random source returned an invalid response")
)

// Source supplies uniformly distributed floats in [0, 1).
type Source interface {
	// Float64 returns one value in [0, 1).
	//
	// Postcondition: err == nil implies 0 <= v < 1.
	Float64(ctx context.Context) (float64, error)
}

// SourceFunc adapts a plain function into a Source.
type SourceFunc func(ctx context.Context) (float64, error)

// Float64 calls f.
func (f SourceFunc) Float64(ctx context.Context) (float64, error) { return f(ctx) }

// cryptoSource implements Source using crypto/rand with two-digit precision,
// matching the granularity of the random.org endpoint.
type cryptoSource struct{}

// NewCryptoSource returns a local Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Float64(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return 0, fmt.Errorf("%w: crypto/rand: %v", ErrUnavailable, err)
	}
	return float64(n.Int64()) / 100, nil
}

// Fixed returns a Source that always yields v.
//
// Precondition: 0 <= v < 1.
func Fixed(v float64) Source {
	return SourceFunc(func(context.Context) (float64, error) { return v, nil })
}

// Failing returns a Source that always fails with err.
func Failing(err error) Source {
	return SourceFunc(func(context.Context) (float64, error) { return 0, err })
}

// Sequence replays a fixed list of values, then fails with ErrUnavailable.
// It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence returns a Sequence yielding values in order.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 implements Source.
func (s *Sequence) Float64(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0, fmt.Errorf("%w: sequence exhausted after %d draws", ErrUnavailable, len(s.values))
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
