package memory

import (
	"testing"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("player-1", app.NewGame(domain.DifficultyEasy, nil, 0, nil), domain.DefaultSettings())
	store.Put("player-1", session)
	if got, ok := store.Get("player-1"); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	store.Delete("player-1")
	if _, ok := store.Get("player-1"); ok {
		t.Fatalf("expected session removed")
	}
}
