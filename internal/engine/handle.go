// Package engine owns the process-wide document engine and bounds how many
// documents are open at once.
package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// DefaultMaxSessions is used when the configured session limit is not positive.
const DefaultMaxSessions = 2

// Factory creates the document engine on first use.
type Factory func(ctx context.Context) (port.DocumentEngine, error)

// Handle lazily initializes a document engine and hands out sessions on it.
// Only one initialization runs at a time; once an engine exists, callers
// reuse it without locking. A failed initialization is retried by the next
// caller.
type Handle struct {
	factory  Factory
	engine   atomic.Pointer[port.DocumentEngine]
	initMu   sync.Mutex
	sessions *semaphore.Weighted
	log      *zap.Logger
}

// NewHandle creates a Handle allowing maxSessions concurrently open documents.
func NewHandle(factory Factory, maxSessions int, log *zap.Logger) *Handle {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Handle{
		factory:  factory,
		sessions: semaphore.NewWeighted(int64(maxSessions)),
		log:      log.Named("engine"),
	}
}

func (h *Handle) get(ctx context.Context) (port.DocumentEngine, error) {
	if e := h.engine.Load(); e != nil {
		return *e, nil
	}

	h.initMu.Lock()
	defer h.initMu.Unlock()
	if e := h.engine.Load(); e != nil {
		return *e, nil
	}

	h.log.Info("initializing document engine")
	e, err := h.factory(ctx)
	if err != nil {
		h.log.Error("document engine initialization failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	h.engine.Store(&e)
	return e, nil
}

// Ready initializes the engine if needed and reports whether it is usable.
func (h *Handle) Ready(ctx context.Context) error {
	_, err := h.get(ctx)
	return err
}

// Acquire returns a session once the engine is initialized and a session
// slot is free. The caller must Release it.
func (h *Handle) Acquire(ctx context.Context) (*Session, error) {
	e, err := h.get(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Session{engine: e, release: func() { h.sessions.Release(1) }}, nil
}

// Close drops the engine. The next Acquire creates a new one.
func (h *Handle) Close() error {
	h.initMu.Lock()
	defer h.initMu.Unlock()
	e := h.engine.Swap(nil)
	if e == nil {
		return nil
	}
	if c, ok := (*e).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Session is one slot on the engine.
type Session struct {
	engine  port.DocumentEngine
	release func()
	once    sync.Once
}

func (s *Session) Open(ctx context.Context, path string) (port.Document, error) {
	return s.engine.Open(ctx, path)
}

// Release frees the slot. Calling it more than once is a no-op.
func (s *Session) Release() {
	s.once.Do(s.release)
}
