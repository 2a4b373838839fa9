package memory

import (
	"context"
	"sync"
	"time"

	"capital-quiz/internal/domain"
)

// SettingsStore keeps settings in process memory; nothing survives a restart.
type SettingsStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	settings map[string]domain.Settings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		clock:    time.Now,
		settings: make(map[string]domain.Settings),
	}
}

func (s *SettingsStore) Load(_ context.Context, profile string) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[profile]; ok {
		return settings, nil
	}
	return domain.DefaultSettings(), nil
}

// Save stores settings, never lowering a previously stored high score.
func (s *SettingsStore) Save(_ context.Context, profile string, settings domain.Settings) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.settings[profile]; ok {
		settings.HighScore = max(settings.HighScore, prev.HighScore)
	}
	settings.UpdatedAt = s.clock()
	s.settings[profile] = settings
	return settings, nil
}
