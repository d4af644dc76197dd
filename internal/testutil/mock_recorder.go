//go:build !production

package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/flip-seven/internal/types"
)

var errNoMessage = errors.New("no message of that type")

// MockRecorder implements types.ResultRecorder with testify expectations
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordResult(ctx context.Context, result *types.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MemoryRecorder keeps results in memory
type MemoryRecorder struct {
	mu      sync.Mutex
	results []*types.GameResult
	done    chan struct{}
}

// NewMemoryRecorder creates a MemoryRecorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{done: make(chan struct{}, 16)}
}

func (r *MemoryRecorder) RecordResult(_ context.Context, result *types.GameResult) error {
	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()

	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

// Recorded signals once per recorded result
func (r *MemoryRecorder) Recorded() <-chan struct{} {
	return r.done
}

// Results returns a copy of the recorded results
func (r *MemoryRecorder) Results() []*types.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*types.GameResult, len(r.results))
	copy(out, r.results)
	return out
}
