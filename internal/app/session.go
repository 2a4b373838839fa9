package app

import (
	"sync"
	"time"

	"capital-quiz/internal/domain"
)

// Session is a live game for one player together with the player's settings.
type Session struct {
	id          string
	createdAt   time.Time
	now         func() time.Time
	mu          sync.Mutex
	game        *Game
	settings    domain.Settings
	lastActive  time.Time
	conns       int
	subscribers map[chan domain.GameState]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, game *Game, settings domain.Settings) *Session {
	return NewSessionWithClock(id, game, settings, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, game *Game, settings domain.Settings, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:          id,
		createdAt:   created,
		now:         now,
		game:        game,
		settings:    settings,
		lastActive:  created,
		subscribers: make(map[chan domain.GameState]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// LastActive is the time of the last successful event.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Dispatch forwards ev to the game and broadcasts the new state on success.
func (s *Session) Dispatch(ev domain.Event) (domain.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, err := s.game.Dispatch(ev)
	if err != nil {
		return domain.Transition{}, err
	}
	s.lastActive = s.now()
	s.broadcastLocked(tr.State)
	return tr, nil
}

// State returns the current game snapshot.
func (s *Session) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Settings returns the settings the session was started or last updated with.
func (s *Session) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) setSettings(settings domain.Settings) domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.lastActive = s.now()
	s.game.RaiseHighScore(settings.HighScore)
	state := s.game.Snapshot()
	s.broadcastLocked(state)
	return state
}

// replace swaps in a new game, keeping the better of the two high scores.
func (s *Session) replace(game *Game) domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	game.RaiseHighScore(s.game.Snapshot().HighScore)
	s.game = game
	s.lastActive = s.now()
	state := s.game.Snapshot()
	s.broadcastLocked(state)
	return state
}

// Subscribe returns a channel of state snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.GameState, func()) {
	ch := make(chan domain.GameState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.game.Snapshot()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) join() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns++
}

func (s *Session) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

// leave drops one connection and returns how many remain.
func (s *Session) leave() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns > 0 {
		s.conns--
	}
	return s.conns
}

// Close ends every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked(state domain.GameState) {
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// slow subscriber: drop the oldest snapshot, only the latest matters
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}
