package app

import (
	"context"
	"sync"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// Session is the process-wide run state: the stop flag, the monitor
// interface to restore, and the attack parameters.
type Session struct {
	*domain.AttackSession

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	iface string
}

// NewSession derives the session context from parent. Cancelling parent
// (e.g. on SIGINT) stops the session.
func NewSession(parent context.Context, attack *domain.AttackSession) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{AttackSession: attack, ctx: ctx, cancel: cancel}
	context.AfterFunc(ctx, func() { s.MarkStopped() })
	return s
}

// Context is cancelled once the session stops.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Stop sets the stop flag. Safe to call repeatedly and from any goroutine.
func (s *Session) Stop() {
	s.MarkStopped()
	s.cancel()
}

// Stopped reports whether Stop was called or the parent context ended.
func (s *Session) Stopped() bool {
	return !s.IsRunning() || s.ctx.Err() != nil
}

// SetInterface records the monitor interface once it is established.
func (s *Session) SetInterface(iface string) {
	s.mu.Lock()
	s.iface = iface
	s.AttackSession.Interface = iface
	s.mu.Unlock()
}

// MonitorInterface returns the established interface, or "".
func (s *Session) MonitorInterface() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iface
}
