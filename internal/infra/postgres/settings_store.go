package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capital-quiz/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SettingsStore keeps settings in the settings table, one row per profile.
type SettingsStore struct {
	pool *pgxpool.Pool
}

func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

func (s *SettingsStore) Load(ctx context.Context, profile string) (domain.Settings, error) {
	var (
		settings   domain.Settings
		difficulty string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT high_score, sound_enabled, difficulty, updated_at FROM settings WHERE profile=$1`, profile,
	).Scan(&settings.HighScore, &settings.SoundEnabled, &difficulty, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings.Difficulty = parseDifficulty(difficulty)
	return settings, nil
}

// Save upserts the row; the stored high score only ever grows.
func (s *SettingsStore) Save(ctx context.Context, profile string, settings domain.Settings) (domain.Settings, error) {
	var (
		saved      domain.Settings
		difficulty string
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO settings (profile, high_score, sound_enabled, difficulty, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile) DO UPDATE SET
			high_score    = GREATEST(settings.high_score, EXCLUDED.high_score),
			sound_enabled = EXCLUDED.sound_enabled,
			difficulty    = EXCLUDED.difficulty,
			updated_at    = EXCLUDED.updated_at
		RETURNING high_score, sound_enabled, difficulty, updated_at`,
		profile, max(settings.HighScore, 0), settings.SoundEnabled, string(parseDifficulty(string(settings.Difficulty))), time.Now().UTC(),
	).Scan(&saved.HighScore, &saved.SoundEnabled, &difficulty, &saved.UpdatedAt)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	saved.Difficulty = parseDifficulty(difficulty)
	return saved, nil
}

func parseDifficulty(raw string) domain.Difficulty {
	if d, err := domain.ParseDifficulty(raw); err == nil {
		return d
	}
	return domain.DifficultyNormal
}
