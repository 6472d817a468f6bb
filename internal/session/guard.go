package session

import "time"

// Guard wraps a pending resolution with an advisory deadline. When the
// deadline elapses before the resolution completes, fn runs once; the
// underlying resolution is never cancelled or failed by the guard.
type Guard struct {
	timer *time.Timer
}

// StartGuard arms a guard that invokes fn after d. Callers stop it as soon
// as the guarded operation completes so a stale deadline never fires against
// a finished resolution.
func StartGuard(d time.Duration, fn func()) *Guard {
	return &Guard{timer: time.AfterFunc(d, fn)}
}

// Stop cancels the deadline. Safe on a nil guard and after firing.
func (g *Guard) Stop() {
	if g == nil {
		return
	}
	g.timer.Stop()
}
