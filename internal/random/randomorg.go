package random

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes bounds how much of the response body is read.
const maxBodyBytes = 64

// RandomOrg fetches decimal fractions from random.org over HTTP.
// Each call performs exactly one request; failures are not retried.
type RandomOrg struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewRandomOrg creates a RandomOrg client for url with a per-request timeout.
// A nil client selects http.DefaultClient.
//
// Precondition: url must be an absolute http(s) URL; timeout > 0.
func NewRandomOrg(url string, timeout time.Duration, client *http.Client) *RandomOrg {
	if client == nil {
		client = http.DefaultClient
	}
	return &RandomOrg{url: url, timeout: timeout, client: client}
}

// Float64 implements Source.
//
// Postcondition: errors wrap ErrTimeout, ErrUnavailable or ErrMalformed.
func (r *RandomOrg) Float64(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return 0, fmt.Errorf("%w: request to random.org timed out after %s", ErrTimeout, r.timeout)
		}
		return 0, fmt.Errorf("%w: request to random.org failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: random.org returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return 0, fmt.Errorf("%w: reading random.org response timed out", ErrTimeout)
		}
		return 0, fmt.Errorf("%w: reading random.org response: %v", ErrUnavailable, err)
	}

	return ParseFraction(string(body))
}

// ParseFraction parses a plain-text decimal fraction such as "0.42\n".
//
// Postcondition: Returns a value in [0, 1) or an error wrapping ErrMalformed.
func ParseFraction(body string) (float64, error) {
	text := strings.TrimSpace(body)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return 0, fmt.Errorf("%w: %v is outside [0, 1)", ErrMalformed, v)
	}
	return v, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
