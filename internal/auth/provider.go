package auth

import (
	"context"
	"sync"

	"github.com/swapcloset/swapcloset/internal/models"
)

// Event is an auth state change emitted by a Provider.
type Event string

const (
	EventSignedIn  Event = "signed-in"
	EventSignedOut Event = "signed-out"
	EventRefreshed Event = "refreshed"
)

// Provider is the boundary contract to the external auth backend.
//
// CurrentIdentity returns (nil, nil) when no subject is signed in; any other
// failure is a real error. Subscribe registers a change listener and returns
// an unsubscribe function; listeners are invoked synchronously on the
// goroutine that triggered the change.
type Provider interface {
	CurrentIdentity(ctx context.Context) (*models.Identity, error)
	Subscribe(fn func(event Event, identity *models.Identity)) (unsubscribe func())
}

// TokenProvider is a Provider backed by a single mutable token slot. The
// hosting process feeds it tokens as the user signs in and out; identity is
// derived by verifying the current token.
type TokenProvider struct {
	secret []byte

	mu      sync.Mutex
	token   string
	subs    map[int]func(Event, *models.Identity)
	nextSub int
}

func NewTokenProvider(secret []byte) *TokenProvider {
	return &TokenProvider{
		secret: secret,
		subs:   make(map[int]func(Event, *models.Identity)),
	}
}

// CurrentIdentity verifies the stored token, if any.
func (p *TokenProvider) CurrentIdentity(ctx context.Context) (*models.Identity, error) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()

	if token == "" {
		return nil, nil
	}
	return ParseIdentity(token, p.secret)
}

// Subscribe registers fn for subsequent auth events.
func (p *TokenProvider) Subscribe(fn func(Event, *models.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SetToken stores a new token and, when it verifies, notifies subscribers of
// a sign-in. An invalid token is rejected and no event is emitted.
func (p *TokenProvider) SetToken(token string) error {
	identity, err := ParseIdentity(token, p.secret)
	if err != nil {
		return err
	}

	p.mu.Lock()
	refreshed := p.token != ""
	p.token = token
	subs := p.snapshotSubs()
	p.mu.Unlock()

	event := EventSignedIn
	if refreshed {
		event = EventRefreshed
	}
	for _, fn := range subs {
		fn(event, identity)
	}
	return nil
}

// ClearToken drops the stored token and notifies subscribers of a sign-out.
func (p *TokenProvider) ClearToken() {
	p.mu.Lock()
	hadToken := p.token != ""
	p.token = ""
	subs := p.snapshotSubs()
	p.mu.Unlock()

	if !hadToken {
		return
	}
	for _, fn := range subs {
		fn(EventSignedOut, nil)
	}
}

// snapshotSubs copies the listener set so callbacks run outside the lock.
// Callers must hold p.mu.
func (p *TokenProvider) snapshotSubs() []func(Event, *models.Identity) {
	out := make([]func(Event, *models.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		out = append(out, fn)
	}
	return out
}
