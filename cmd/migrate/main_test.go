package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls []string
	steps int
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return nil }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return nil }
func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return nil
}

func TestRun(t *testing.T) {
	tests := []struct {
		direction string
		steps     int
		call      string
		wantSteps int
	}{
		{"up", 0, "up", 0},
		{"up", 2, "steps", 2},
		{"down", 0, "down", 0},
		{"down", 1, "steps", -1},
	}
	for _, tt := range tests {
		f := &fakeMigrator{}
		require.NoError(t, run(f, tt.direction, tt.steps))
		assert.Equal(t, []string{tt.call}, f.calls, tt.direction)
		assert.Equal(t, tt.wantSteps, f.steps)
	}
}

func TestRun_VersionIsNoop(t *testing.T) {
	f := &fakeMigrator{}
	require.NoError(t, run(f, "version", 0))
	assert.Empty(t, f.calls)
}

func TestRun_InvalidDirection(t *testing.T) {
	assert.ErrorContains(t, run(&fakeMigrator{}, "sideways", 0), "invalid direction")
}
