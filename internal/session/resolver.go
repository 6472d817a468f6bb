// Package session resolves the authenticated identity and its profile into
// a single observable snapshot, and keeps that snapshot current across auth
// events. Resolution is asynchronous and time-bounded: a slow load flips an
// advisory "delayed" flag without failing anything.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/swapcloset/swapcloset/internal/auth"
	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/logging"
	"github.com/swapcloset/swapcloset/internal/models"
)

// State is the resolved session state.
type State int

const (
	// StateUnauthenticated: no identity is signed in.
	StateUnauthenticated State = iota
	// StateIncomplete: an identity exists but no profile yet (onboarding
	// has not completed). This is a valid state, not an error.
	StateIncomplete
	// StateReady: identity and profile are both resolved.
	StateReady
	// StateError: a provider or profile fetch failed for a reason other
	// than a benign not-found.
	StateError
)

// Snapshot is one committed view of the session. Loading marks a resolution
// in flight; Delayed marks one that has exceeded the advisory deadline but
// may still complete and override it.
type Snapshot struct {
	State    State
	Identity *models.Identity
	Profile  *models.Profile

	Loading bool
	Delayed bool

	Err error
}

// ProfileSource fetches the profile keyed by an identity subject.
// A missing profile must be reported as common.ErrorNotFound.
type ProfileSource interface {
	ProfileBySubject(ctx context.Context, subject string) (*models.Profile, error)
}

// Resolver owns the session snapshot: it is the sole writer, and observers
// read committed values or subscribe to changes. Every load carries an
// epoch; a result arriving for a superseded epoch, or after Close, is
// discarded rather than applied.
type Resolver struct {
	provider auth.Provider
	profiles ProfileSource
	delay    time.Duration
	logger   logging.Logger

	mu          sync.Mutex
	snap        Snapshot
	epoch       uint64
	guard       *Guard
	closed      bool
	unsubscribe func()
	watchers    map[int]func(Snapshot)
	nextWatcher int
}

// NewResolver builds a resolver. delay is the advisory deadline applied to
// each load; zero disables the guard.
func NewResolver(provider auth.Provider, profiles ProfileSource, delay time.Duration, logger logging.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		profiles: profiles,
		delay:    delay,
		logger:   logger.With("module", "session"),
		watchers: make(map[int]func(Snapshot)),
	}
}

// Start begins the initial resolution and subscribes to provider auth
// events. It returns immediately; observers see Loading until the first
// commit.
func (r *Resolver) Start(ctx context.Context) {
	r.unsubscribe = r.provider.Subscribe(func(event auth.Event, identity *models.Identity) {
		r.onAuthEvent(ctx, event, identity)
	})

	epoch, ok := r.beginLoad()
	if !ok {
		return
	}
	go r.resolve(ctx, epoch)
}

// Close tears the resolver down: the provider subscription is released and
// any in-flight result is discarded instead of applied.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.epoch++
	r.guard.Stop()
	r.guard = nil
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns the latest committed view.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Subscribe registers fn to be called with every committed snapshot change
// and returns an unsubscribe function.
func (r *Resolver) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	id := r.nextWatcher
	r.nextWatcher++
	r.watchers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
	}
}

// beginLoad starts a new epoch, marks the snapshot loading and arms the
// advisory guard. It reports false when the resolver is already closed.
func (r *Resolver) beginLoad() (uint64, bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, false
	}
	r.epoch++
	epoch := r.epoch

	r.guard.Stop()
	if r.delay > 0 {
		r.guard = StartGuard(r.delay, func() { r.markDelayed(epoch) })
	}

	r.snap.Loading = true
	r.snap.Delayed = false
	snap := r.snap
	watchers := r.snapshotWatchers()
	r.mu.Unlock()

	notify(watchers, snap)
	return epoch, true
}

// resolve performs one full load for the given epoch: identity, then
// profile, then a single commit.
func (r *Resolver) resolve(ctx context.Context, epoch uint64) {
	identity, err := r.provider.CurrentIdentity(ctx)
	if err != nil {
		r.commit(epoch, Snapshot{State: StateError, Err: err})
		return
	}
	if identity == nil {
		r.commit(epoch, Snapshot{State: StateUnauthenticated})
		return
	}

	r.resolveProfile(ctx, epoch, identity)
}

// resolveProfile fetches the profile for an already-known identity and
// commits the outcome. A benign not-found yields the incomplete state.
func (r *Resolver) resolveProfile(ctx context.Context, epoch uint64, identity *models.Identity) {
	profile, err := r.profiles.ProfileBySubject(ctx, identity.Subject)
	switch {
	case err == nil:
		r.commit(epoch, Snapshot{State: StateReady, Identity: identity, Profile: profile})
	case errors.Is(err, common.ErrorNotFound):
		r.commit(epoch, Snapshot{State: StateIncomplete, Identity: identity})
	default:
		r.logger.Error(ctx, "profile fetch failed", "subject", identity.Subject, "error", err)
		r.commit(epoch, Snapshot{State: StateError, Identity: identity, Err: err})
	}
}

// commit applies a load result unless the epoch was superseded or the
// resolver was closed in the meantime; stale results are dropped without
// touching shared state.
func (r *Resolver) commit(epoch uint64, snap Snapshot) {
	r.mu.Lock()
	if r.closed || epoch != r.epoch {
		r.mu.Unlock()
		return
	}
	r.guard.Stop()
	r.guard = nil

	snap.Loading = false
	snap.Delayed = false
	r.snap = snap
	watchers := r.snapshotWatchers()
	r.mu.Unlock()

	notify(watchers, snap)
}

// markDelayed flips the advisory flag for a still-pending epoch. It never
// fails or cancels the load, and a fire racing a completed or superseded
// load is a no-op.
func (r *Resolver) markDelayed(epoch uint64) {
	r.mu.Lock()
	if r.closed || epoch != r.epoch || !r.snap.Loading {
		r.mu.Unlock()
		return
	}
	r.snap.Delayed = true
	snap := r.snap
	watchers := r.snapshotWatchers()
	r.mu.Unlock()

	notify(watchers, snap)
}

// onAuthEvent reacts to provider notifications: sign-out clears the session
// synchronously; sign-in and refresh supersede any in-flight load with a
// fresh profile fetch for the event's identity.
func (r *Resolver) onAuthEvent(ctx context.Context, event auth.Event, identity *models.Identity) {
	switch event {
	case auth.EventSignedOut:
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return
		}
		r.epoch++
		r.guard.Stop()
		r.guard = nil
		r.snap = Snapshot{State: StateUnauthenticated}
		snap := r.snap
		watchers := r.snapshotWatchers()
		r.mu.Unlock()

		notify(watchers, snap)

	case auth.EventSignedIn, auth.EventRefreshed:
		if identity == nil {
			return
		}
		epoch, ok := r.beginLoad()
		if !ok {
			return
		}
		go r.resolveProfile(ctx, epoch, identity)
	}
}

// snapshotWatchers copies the watcher set so callbacks run outside the
// lock. Callers must hold r.mu.
func (r *Resolver) snapshotWatchers() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(r.watchers))
	for _, fn := range r.watchers {
		out = append(out, fn)
	}
	return out
}

func notify(watchers []func(Snapshot), snap Snapshot) {
	for _, fn := range watchers {
		fn(snap)
	}
}
