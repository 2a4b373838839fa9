package memory

import (
	"context"
	"testing"

	"capital-quiz/internal/domain"
)

func TestSettingsStoreDefaultsAndHighScore(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore()

	got, err := store.Load(ctx, "local")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.HighScore != 0 || !got.SoundEnabled || got.Difficulty != domain.DifficultyNormal {
		t.Fatalf("expected defaults, got %+v", got)
	}

	if _, err := store.Save(ctx, "local", domain.Settings{HighScore: 7, SoundEnabled: false, Difficulty: domain.DifficultyHard}); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := store.Save(ctx, "local", domain.Settings{HighScore: 3, SoundEnabled: true, Difficulty: domain.DifficultyEasy})
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if saved.HighScore != 7 {
		t.Fatalf("expected high score to stay at 7, got %d", saved.HighScore)
	}

	got, _ = store.Load(ctx, "local")
	if got.HighScore != 7 || !got.SoundEnabled || got.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected settings %+v", got)
	}
}
