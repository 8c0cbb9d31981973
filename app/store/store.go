package store

import (
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
)

// AlertTTL is how long an armed alert stays visible before auto-clearing.
const AlertTTL = 3000 * time.Millisecond

// Config sets up a Store.
type Config struct {
	Initial  AppState
	AlertTTL time.Duration // 0 means the default 3s
}

// Store owns the state tree. All mutations go through Dispatch which applies
// the pure reducer under lock, so interleaved dispatchers from concurrent
// operations can't cross-contaminate unrelated fields.
type Store struct {
	mu       sync.Mutex
	state    AppState
	alertGen uint64 // bumped on every alert arm, guarded by mu
	alertTTL time.Duration
}

// New creates a Store with the given initial state.
func New(cfg Config) *Store {
	ttl := cfg.AlertTTL
	if ttl <= 0 {
		ttl = AlertTTL
	}
	return &Store{state: cfg.Initial, alertTTL: ttl}
}

// State returns a point-in-time snapshot of the state tree.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// Dispatch applies a single reduction. Actions that raise an alert arm the
// auto-clear timer: each arm captures a fresh generation and the timer fires
// only if its generation is still current, so a newer alert is never cleared
// by an older timer.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Type == ActionHandleChange {
		if _, ok := applyField(s.state, a.Field, a.Value); !ok {
			log.Printf("[WARN] rejected change of field %q to %q", a.Field, a.Value)
		}
	}

	s.state = reduce(s.state, a)

	if s.state.ShowAlert && raisesAlert(a.Type) {
		s.armAlertClear()
	}
}

// armAlertClear schedules the auto-clear for the current alert. Caller holds mu.
func (s *Store) armAlertClear() {
	s.alertGen++
	gen := s.alertGen
	time.AfterFunc(s.alertTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.alertGen { // superseded by a newer alert
			return
		}
		s.state = reduce(s.state, Action{Type: ActionHideAlert})
	})
}

// raisesAlert reports whether a tag's reduction may arm a visible alert.
func raisesAlert(t ActionType) bool {
	switch t {
	case ActionDisplayAlert,
		ActionSetupUserSuccess, ActionSetupUserError,
		ActionUpdateUserSuccess, ActionUpdateUserError,
		ActionCreateJobSuccess, ActionCreateJobError,
		ActionEditJobSuccess, ActionEditJobError:
		return true
	}
	return false
}
