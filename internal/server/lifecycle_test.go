package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	started atomic.Bool
	stopped chan struct{}
	once    sync.Once
	startFn func() error
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func newMockService(name string, order *stopOrder) *mockService {
	return &mockService{name: name, stopped: make(chan struct{}), order: order}
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	select {
	case <-m.stopped:
	case <-ctx.Done():
	}
	return nil
}

func (m *mockService) Stop() {
	m.once.Do(func() {
		if m.order != nil {
			m.order.add(m.name)
		}
		close(m.stopped)
	})
}

func TestLifecycleStartsAndStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	svc1 := newMockService("svc1", order)
	svc2 := newMockService("svc2", order)
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"svc2", "svc1"}, order.names)
}

func TestLifecycleServiceErrorTriggersShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("bind failed")
	healthy := newMockService("healthy", nil)
	failing := &mockService{stopped: make(chan struct{}), startFn: func() error { return boom }}
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "service failing")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after service failure")
	}
	select {
	case <-healthy.stopped:
	default:
		t.Fatal("healthy service was not stopped")
	}
}

func TestLifecycleShutdownGraceBoundsWait(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetShutdownGrace(50 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	lc.Add("stuck", &FuncService{StartFn: func(context.Context) error {
		<-release
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.NoError(t, lc.Run(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFuncService(t *testing.T) {
	var started, stopped bool
	svc := &FuncService{
		StartFn: func(context.Context) error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)

	(&FuncService{StartFn: func(context.Context) error { return nil }}).Stop()
}

func TestContextServiceStopCancelsFunction(t *testing.T) {
	svc := NewContextService(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return svc.cancel != nil
	}, 2*time.Second, 5*time.Millisecond)
	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("context service did not stop")
	}
}
