package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"capital-quiz/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Get(id string) (*Session, bool)
	Put(id string, session *Session)
	Delete(id string)
}

// SettingsStore persists per-profile settings. Load returns defaults for unknown profiles.
// Save returns what was stored, which may carry a higher high score than the one passed in.
type SettingsStore interface {
	Load(ctx context.Context, profile string) (domain.Settings, error)
	Save(ctx context.Context, profile string, settings domain.Settings) (domain.Settings, error)
}

// SoundPlayer plays a named sound asset.
type SoundPlayer interface {
	Play(ctx context.Context, name string) error
}

// QuizService contains the quiz use cases shared by every front end.
type QuizService struct {
	sessions  SessionRepository
	settings  SettingsStore
	questions *QuestionProvider
	sounds    SoundPlayer

	startMu sync.Mutex
}

func NewQuizService(sessions SessionRepository, settings SettingsStore, questions *QuestionProvider, sounds SoundPlayer) *QuizService {
	return &QuizService{
		sessions:  sessions,
		settings:  settings,
		questions: questions,
		sounds:    sounds,
	}
}

// Start resumes the profile's session or creates one from its stored settings.
func (s *QuizService) Start(ctx context.Context, profile string) (domain.GameState, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	session, err := s.startLocked(ctx, profile)
	if err != nil {
		return domain.GameState{}, err
	}
	return session.State(), nil
}

// Join is Start for a front end that holds a connection open. Each Join must be paired with a Leave.
func (s *QuizService) Join(ctx context.Context, profile string) (domain.GameState, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	session, err := s.startLocked(ctx, profile)
	if err != nil {
		return domain.GameState{}, err
	}
	session.join()
	return session.State(), nil
}

// Leave persists the profile's settings and drops its session once the last connection has left.
func (s *QuizService) Leave(ctx context.Context, profile string) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	session, ok := s.sessions.Get(profile)
	if !ok {
		return nil
	}
	err := s.saveHighScore(ctx, session, session.State().HighScore)
	if session.leave() == 0 {
		s.sessions.Delete(profile)
		session.Close()
	}
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *QuizService) startLocked(ctx context.Context, profile string) (*Session, error) {
	if session, ok := s.sessions.Get(profile); ok {
		return session, nil
	}

	settings, err := s.settings.Load(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	session := NewSession(profile, s.newGame(settings), settings)
	s.sessions.Put(profile, session)
	return session, nil
}

// State returns the current snapshot of the profile's session.
func (s *QuizService) State(_ context.Context, profile string) (domain.GameState, error) {
	session, ok := s.sessions.Get(profile)
	if !ok {
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// SubmitAnswer judges option against the current question.
func (s *QuizService) SubmitAnswer(ctx context.Context, profile, option string) (domain.Transition, error) {
	return s.dispatch(ctx, profile, domain.AnswerSubmitted{Option: option})
}

// Restart starts the profile's session over with reshuffled questions.
func (s *QuizService) Restart(ctx context.Context, profile string) (domain.Transition, error) {
	return s.dispatch(ctx, profile, domain.Restarted{})
}

func (s *QuizService) dispatch(ctx context.Context, profile string, ev domain.Event) (domain.Transition, error) {
	session, ok := s.sessions.Get(profile)
	if !ok {
		return domain.Transition{}, domain.ErrSessionNotFound
	}

	tr, err := session.Dispatch(ev)
	if err != nil {
		return domain.Transition{}, err
	}

	if tr.State.HighScore > session.Settings().HighScore {
		// The in-memory score stays authoritative; End retries the save.
		if err := s.saveHighScore(ctx, session, tr.State.HighScore); err != nil {
			log.Printf("persist high score for %s: %v", profile, err)
		}
	}

	tr.Effects = s.runEffects(ctx, session.Settings(), tr.Effects)
	return tr, nil
}

func (s *QuizService) saveHighScore(ctx context.Context, session *Session, highScore int) error {
	settings := session.Settings()
	settings.HighScore = max(settings.HighScore, highScore)
	saved, err := s.settings.Save(ctx, session.ID(), settings)
	if err != nil {
		return err
	}
	session.setSettings(saved)
	return nil
}

// runEffects plays requested sounds in the background and returns the effects the front end should see.
func (s *QuizService) runEffects(ctx context.Context, settings domain.Settings, effects []domain.Effect) []domain.Effect {
	out := make([]domain.Effect, 0, len(effects))
	for _, effect := range effects {
		if effect.Kind != domain.EffectPlaySound {
			out = append(out, effect)
			continue
		}
		if !settings.SoundEnabled {
			continue
		}
		out = append(out, effect)
		if s.sounds == nil {
			continue
		}
		go func(name string) {
			if err := s.sounds.Play(context.WithoutCancel(ctx), name); err != nil {
				log.Printf("play sound %q: %v", name, err)
			}
		}(effect.Sound)
	}
	return out
}

// Settings returns the profile's settings, from its live session when there is one.
func (s *QuizService) Settings(ctx context.Context, profile string) (domain.Settings, error) {
	if session, ok := s.sessions.Get(profile); ok {
		settings := session.Settings()
		settings.HighScore = max(settings.HighScore, session.State().HighScore)
		return settings, nil
	}
	settings, err := s.settings.Load(ctx, profile)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies update, persists it and starts a fresh game when the difficulty changes.
func (s *QuizService) UpdateSettings(ctx context.Context, profile string, update domain.SettingsUpdate) (domain.Settings, domain.GameState, error) {
	var difficulty domain.Difficulty
	if update.Difficulty != nil {
		d, err := domain.ParseDifficulty(string(*update.Difficulty))
		if err != nil {
			return domain.Settings{}, domain.GameState{}, err
		}
		difficulty = d
	}
	if _, err := s.Start(ctx, profile); err != nil {
		return domain.Settings{}, domain.GameState{}, err
	}
	session, ok := s.sessions.Get(profile)
	if !ok {
		return domain.Settings{}, domain.GameState{}, domain.ErrSessionNotFound
	}

	current := session.Settings()
	state := session.State()
	next := current
	next.HighScore = max(current.HighScore, state.HighScore)
	if update.SoundEnabled != nil {
		next.SoundEnabled = *update.SoundEnabled
	}
	if update.Difficulty != nil {
		next.Difficulty = difficulty
		if difficulty != current.Difficulty {
			// switching difficulty ends the running game like a restart does
			next.HighScore = max(next.HighScore, state.Score)
		}
	}

	saved, err := s.settings.Save(ctx, profile, next)
	if err != nil {
		return domain.Settings{}, domain.GameState{}, fmt.Errorf("save settings: %w", err)
	}
	state = session.setSettings(saved)
	if saved.Difficulty != current.Difficulty {
		state = session.replace(s.newGame(saved))
	}
	return saved, state, nil
}

// Subscribe returns a channel that receives state updates for a profile.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, profile string) (<-chan domain.GameState, func(), error) {
	session, ok := s.sessions.Get(profile)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// End persists the profile's settings and drops its session regardless of open connections.
func (s *QuizService) End(ctx context.Context, profile string) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	session, ok := s.sessions.Get(profile)
	if !ok {
		return nil
	}
	return s.endLocked(ctx, profile, session)
}

// EndIfIdle ends the profile's session when it has no connections and no event since before cutoff.
// It reports whether no session remains for the profile.
func (s *QuizService) EndIfIdle(ctx context.Context, profile string, cutoff time.Time) (bool, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	session, ok := s.sessions.Get(profile)
	if !ok {
		return true, nil
	}
	if session.connections() > 0 || !session.LastActive().Before(cutoff) {
		return false, nil
	}
	return true, s.endLocked(ctx, profile, session)
}

func (s *QuizService) endLocked(ctx context.Context, profile string, session *Session) error {
	err := s.saveHighScore(ctx, session, session.State().HighScore)
	s.sessions.Delete(profile)
	session.Close()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *QuizService) newGame(settings domain.Settings) *Game {
	difficulty, err := domain.ParseDifficulty(string(settings.Difficulty))
	if err != nil {
		difficulty = domain.DifficultyNormal
	}
	return NewGame(difficulty, s.questions.Generate(difficulty), settings.HighScore, s.questions.newRand())
}
