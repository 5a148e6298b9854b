package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

type stubEngine struct{ closed atomic.Bool }

func (s *stubEngine) Open(context.Context, string) (port.Document, error) { return nil, nil }
func (s *stubEngine) Close() error                                        { s.closed.Store(true); return nil }

func TestHandle_InitializesOnce(t *testing.T) {
	var calls atomic.Int32
	h := NewHandle(func(context.Context) (port.DocumentEngine, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &stubEngine{}, nil
	}, 8, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := h.Acquire(context.Background())
			if assert.NoError(t, err) {
				s.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestHandle_FailedInitIsRetried(t *testing.T) {
	var calls atomic.Int32
	h := NewHandle(func(context.Context) (port.DocumentEngine, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("soffice not found")
		}
		return &stubEngine{}, nil
	}, 1, zap.NewNop())

	_, err := h.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)

	s, err := h.Acquire(context.Background())
	require.NoError(t, err)
	s.Release()
	assert.Equal(t, int32(2), calls.Load())
}

func TestHandle_BoundsSessions(t *testing.T) {
	h := NewHandle(func(context.Context) (port.DocumentEngine, error) { return &stubEngine{}, nil }, 1, zap.NewNop())

	first, err := h.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	first.Release()
	first.Release()

	second, err := h.Acquire(context.Background())
	require.NoError(t, err)
	second.Release()
}

func TestHandle_CloseDropsEngine(t *testing.T) {
	var engines []*stubEngine
	h := NewHandle(func(context.Context) (port.DocumentEngine, error) {
		e := &stubEngine{}
		engines = append(engines, e)
		return e, nil
	}, 0, zap.NewNop())

	require.NoError(t, h.Ready(context.Background()))
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	require.Len(t, engines, 1)
	assert.True(t, engines[0].closed.Load())

	require.NoError(t, h.Ready(context.Background()))
	assert.Len(t, engines, 2)
}
