package redis

import (
	"context"
	"testing"

	"capital-quiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSettingsStoreRoundTripsHash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSettingsStore(newClient(mr))
	ctx := context.Background()

	got, err := store.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != domain.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}

	if _, err := store.Save(ctx, "p1", domain.Settings{HighScore: 6, SoundEnabled: false, Difficulty: domain.DifficultyEasy}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if v := mr.HGet("quiz:settings:p1", "difficulty"); v != "Easy" {
		t.Fatalf("expected difficulty field Easy, got %q", v)
	}

	got, err = store.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.HighScore != 6 || got.SoundEnabled || got.Difficulty != domain.DifficultyEasy || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestSettingsStoreKeepsHigherScore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSettingsStore(newClient(mr))
	ctx := context.Background()

	if _, err := store.Save(ctx, "p1", domain.Settings{HighScore: 8, SoundEnabled: true, Difficulty: domain.DifficultyHard}); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := store.Save(ctx, "p1", domain.Settings{HighScore: 3, SoundEnabled: true, Difficulty: domain.DifficultyNormal})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.HighScore != 8 {
		t.Fatalf("expected high score 8 to survive, got %d", saved.HighScore)
	}
	if v := mr.HGet("quiz:settings:p1", "highScore"); v != "8" {
		t.Fatalf("expected stored high score 8, got %q", v)
	}
	if v := mr.HGet("quiz:settings:p1", "difficulty"); v != "Normal" {
		t.Fatalf("expected difficulty updated to Normal, got %q", v)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
