package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"capital-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// saveSettings writes all fields in one round trip and keeps the larger high score.
var saveSettings = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'highScore') or '0')
local incoming = tonumber(ARGV[1])
if incoming > current then
	current = incoming
end
redis.call('HSET', KEYS[1], 'highScore', tostring(current), 'soundEnabled', ARGV[2], 'difficulty', ARGV[3], 'updatedAt', ARGV[4])
return current
`)

// SettingsStore keeps settings in a Redis hash per profile.
// Stored as: HSET quiz:settings:{profile} highScore {n} soundEnabled {bool} difficulty {name} updatedAt {rfc3339}
type SettingsStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewSettingsStore(client *redis.Client) *SettingsStore {
	return &SettingsStore{client: client, clock: time.Now}
}

func (s *SettingsStore) Load(ctx context.Context, profile string) (domain.Settings, error) {
	fields, err := s.client.HGetAll(ctx, s.key(profile)).Result()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if len(fields) == 0 {
		return domain.DefaultSettings(), nil
	}
	return settingsFromHash(fields), nil
}

func (s *SettingsStore) Save(ctx context.Context, profile string, settings domain.Settings) (domain.Settings, error) {
	settings.UpdatedAt = s.clock().UTC()
	highScore, err := saveSettings.Run(ctx, s.client, []string{s.key(profile)},
		settings.HighScore,
		strconv.FormatBool(settings.SoundEnabled),
		string(settings.Difficulty),
		settings.UpdatedAt.Format(time.RFC3339),
	).Int()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	settings.HighScore = highScore
	return settings, nil
}

func (s *SettingsStore) key(profile string) string {
	return "quiz:settings:" + profile
}

// settingsFromHash fills missing or malformed fields with defaults.
func settingsFromHash(fields map[string]string) domain.Settings {
	settings := domain.DefaultSettings()
	if n, err := strconv.Atoi(fields["highScore"]); err == nil && n > 0 {
		settings.HighScore = n
	}
	if b, err := strconv.ParseBool(fields["soundEnabled"]); err == nil {
		settings.SoundEnabled = b
	}
	if d, err := domain.ParseDifficulty(fields["difficulty"]); err == nil {
		settings.Difficulty = d
	}
	if t, err := time.Parse(time.RFC3339, fields["updatedAt"]); err == nil {
		settings.UpdatedAt = t
	}
	return settings
}
