package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"capital-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

// SettingsStore keeps every profile's settings in a single YAML document on disk.
type SettingsStore struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

type document struct {
	Profiles map[string]domain.Settings `yaml:"profiles"`
}

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path, clock: time.Now}
}

func (s *SettingsStore) Load(_ context.Context, profile string) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domain.Settings{}, err
	}
	if settings, ok := doc.Profiles[profile]; ok {
		return settings, nil
	}
	return domain.DefaultSettings(), nil
}

// Save writes settings for profile, never lowering a stored high score.
func (s *SettingsStore) Save(_ context.Context, profile string, settings domain.Settings) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domain.Settings{}, err
	}
	if prev, ok := doc.Profiles[profile]; ok {
		settings.HighScore = max(settings.HighScore, prev.HighScore)
	}
	settings.UpdatedAt = s.clock().UTC()
	doc.Profiles[profile] = settings

	if err := s.write(doc); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (s *SettingsStore) read() (document, error) {
	doc := document{}
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return doc, fmt.Errorf("read settings: %w", err)
	}
	doc.Profiles = make(map[string]domain.Settings)
	if len(data) == 0 {
		return doc, nil
	}

	var raw struct {
		Profiles map[string]yaml.Node `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return doc, fmt.Errorf("decode settings: %w", err)
	}
	for profile, node := range raw.Profiles {
		// keys missing from a profile keep their defaults
		settings := domain.DefaultSettings()
		if err := node.Decode(&settings); err != nil {
			return doc, fmt.Errorf("decode settings for %q: %w", profile, err)
		}
		if d, err := domain.ParseDifficulty(string(settings.Difficulty)); err == nil {
			settings.Difficulty = d
		} else {
			settings.Difficulty = domain.DifficultyNormal
		}
		settings.HighScore = max(settings.HighScore, 0)
		doc.Profiles[profile] = settings
	}
	return doc, nil
}

// write replaces the file atomically so a crash never leaves half a document behind.
func (s *SettingsStore) write(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
