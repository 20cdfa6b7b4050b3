// Package session guards access to a tracking session that can be torn
// down and recreated while queries are in flight.
//
// Readers hold a shared lock for the whole of one query; Install and
// Teardown take the lock exclusively, so a session is never destroyed while
// any query still holds it. When no session is installed at all, readers
// poll with a short sleep until one appears or the wait times out.
//
// A Guard hold is not reentrant. Take it once at the outermost call and
// pass the session down; a nested Acquire can deadlock behind a pending
// Teardown.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// Defaults for the absent-session poll.
const (
	DefaultPollInterval = 20 * time.Millisecond
	DefaultWaitTimeout  = 5 * time.Second
)

// ErrNoSession is returned when no session was installed within the wait
// timeout.
var ErrNoSession = errors.New("session: no tracking session available")

// Guard owns the reference to the current tracking session.
type Guard struct {
	mu      sync.RWMutex
	current xr.Session
	epoch   uuid.UUID

	pollInterval time.Duration
	waitTimeout  time.Duration

	hooksMu sync.Mutex
	hooks   []func(epoch uuid.UUID, installed bool)

	logger *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithPollInterval sets how long readers sleep between checks while no
// session is installed.
func WithPollInterval(d time.Duration) Option {
	return func(g *Guard) { g.pollInterval = d }
}

// WithWaitTimeout bounds how long Acquire waits for a session.
func WithWaitTimeout(d time.Duration) Option {
	return func(g *Guard) { g.waitTimeout = d }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger.With("component", "session.guard") }
}

// NewGuard creates an empty guard.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		pollInterval: DefaultPollInterval,
		waitTimeout:  DefaultWaitTimeout,
		logger:       slog.Default().With("component", "session.guard"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire returns the current session under a shared hold. The caller must
// call release exactly once when the query is done. If no session is
// installed, Acquire polls until one is or the wait timeout elapses.
func (g *Guard) Acquire() (xr.Session, func(), error) {
	deadline := time.Now().Add(g.waitTimeout)
	waited := false

	for {
		g.mu.RLock()
		if s := g.current; s != nil {
			if waited {
				g.logger.Debug("session became available", "epoch", g.epoch)
			}
			return s, g.releaseOnce(), nil
		}
		g.mu.RUnlock()

		if !time.Now().Before(deadline) {
			return nil, func() {}, ErrNoSession
		}
		waited = true
		time.Sleep(g.pollInterval)
	}
}

func (g *Guard) releaseOnce() func() {
	var once sync.Once
	return func() { once.Do(g.mu.RUnlock) }
}

// With runs fn with the current session held.
func (g *Guard) With(fn func(xr.Session) error) error {
	s, release, err := g.Acquire()
	if err != nil {
		return err
	}
	defer release()
	return fn(s)
}

// Install makes s the current session, replacing any previous one. It
// waits until every outstanding hold has been released.
func (g *Guard) Install(s xr.Session) uuid.UUID {
	g.mu.Lock()
	replaced := g.current != nil
	g.current = s
	g.epoch = uuid.New()
	epoch := g.epoch
	g.notify(epoch, true)
	g.mu.Unlock()

	g.logger.Info("tracking session installed", "epoch", epoch, "replaced", replaced)
	return epoch
}

// Teardown removes the current session. It waits until every outstanding
// hold has been released, so the caller may destroy the session afterwards.
func (g *Guard) Teardown() {
	g.mu.Lock()
	if g.current == nil {
		g.mu.Unlock()
		return
	}
	epoch := g.epoch
	g.current = nil
	g.epoch = uuid.Nil
	g.notify(epoch, false)
	g.mu.Unlock()

	g.logger.Info("tracking session torn down", "epoch", epoch)
}

// Installed reports whether a session is currently installed.
func (g *Guard) Installed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current != nil
}

// Epoch identifies the installed session; uuid.Nil when none is.
func (g *Guard) Epoch() uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.epoch
}

// OnChange registers fn to run on every Install and Teardown, in
// registration order. Hooks run while the exclusive lock is held, before
// any reader can see the change, and must not call back into the Guard.
func (g *Guard) OnChange(fn func(epoch uuid.UUID, installed bool)) {
	g.hooksMu.Lock()
	g.hooks = append(g.hooks, fn)
	g.hooksMu.Unlock()
}

func (g *Guard) notify(epoch uuid.UUID, installed bool) {
	g.hooksMu.Lock()
	hooks := make([]func(uuid.UUID, bool), len(g.hooks))
	copy(hooks, g.hooks)
	g.hooksMu.Unlock()

	for _, fn := range hooks {
		fn(epoch, installed)
	}
}
