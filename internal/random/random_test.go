package random_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/random"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRandomOrg_Success(t *testing.T) {
	var gotQuery string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("0.42\n"))
	})

	src := random.NewRandomOrg(srv.URL+"/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new", time.Second, srv.Client())
	v, err := src.Float64(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.42, v)
	assert.Equal(t, "num=1&dec=2&col=1&format=plain&rnd=new", gotQuery)
}

func TestRandomOrg_InvalidResponse(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("invalid_response"))
	})

	_, err := random.NewRandomOrg(srv.URL, time.Second, srv.Client()).Float64(context.Background())
	assert.ErrorIs(t, err, random.ErrMalformed)
}

func TestRandomOrg_BadStatus(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	})

	_, err := random.NewRandomOrg(srv.URL, time.Second, srv.Client()).Float64(context.Background())
	assert.ErrorIs(t, err, random.ErrUnavailable)
}

func TestRandomOrg_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := random.NewRandomOrg(srv.URL, 50*time.Millisecond, srv.Client()).Float64(context.Background())
	assert.ErrorIs(t, err, random.ErrTimeout)
	assert.NotErrorIs(t, err, random.ErrUnavailable)
}

func TestRandomOrg_NetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = random.NewRandomOrg("http://"+addr, time.Second, nil).Float64(context.Background())
	assert.ErrorIs(t, err, random.ErrUnavailable)
	assert.NotErrorIs(t, err, random.ErrTimeout)
}

func TestParseFraction(t *testing.T) {
	v, err := random.ParseFraction(" 0.07\r\n")
	require.NoError(t, err)
	assert.Equal(t, 0.07, v)

	for _, bad := range []string{"", "abc", "1.00", "-0.1", "NaN"} {
		_, err := random.ParseFraction(bad)
		assert.ErrorIs(t, err, random.ErrMalformed, "input %q", bad)
	}
}

// Property: every two-digit fraction the endpoint can return parses back exactly.
func TestPropertyParseFraction_TwoDigit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 99).Draw(rt, "hundredths")
		want := float64(n) / 100
		got, err := random.ParseFraction(formatHundredths(n))
		if err != nil {
			rt.Fatalf("ParseFraction: %v", err)
		}
		if got != want {
			rt.Fatalf("got %v, want %v", got, want)
		}
	})
}

func formatHundredths(n int) string {
	return "0." + string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func TestCryptoSource_Range(t *testing.T) {
	src := random.NewCryptoSource()
	for i := 0; i < 200; i++ {
		v, err := src.Float64(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestCryptoSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := random.NewCryptoSource().Float64(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSequence(t *testing.T) {
	seq := random.NewSequence(0.1, 0.9)
	ctx := context.Background()

	v, err := seq.Float64(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)
	v, err = seq.Float64(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)

	_, err = seq.Float64(ctx)
	assert.ErrorIs(t, err, random.ErrUnavailable)
	assert.Equal(t, 2, seq.Draws())
}

func TestLoggedSource(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	v, err := random.NewLoggedSource("fixed", random.Fixed(0.5), logger).Float64(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	boom := errors.New("boom")
	_, err = random.NewLoggedSource("failing", random.Failing(boom), logger).Float64(context.Background())
	assert.ErrorIs(t, err, boom)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "random draw", logs.All()[0].Message)
	assert.Equal(t, "random draw failed", logs.All()[1].Message)
}

func TestNewFromConfig(t *testing.T) {
	src, err := random.NewFromConfig(config.RandomConfig{Provider: config.ProviderCrypto}, zap.NewNop())
	require.NoError(t, err)
	v, err := src.Float64(context.Background())
	require.NoError(t, err)
	assert.Less(t, v, 1.0)

	_, err = random.NewFromConfig(config.RandomConfig{Provider: "dice"}, zap.NewNop())
	assert.Error(t, err)
}
