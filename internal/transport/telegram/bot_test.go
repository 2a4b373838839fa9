package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
	"capital-quiz/internal/infra/memory"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	return f.sent[len(f.sent)-1]
}

func TestQuizOverTelegram(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	settings := memory.NewSettingsStore()
	bot := NewBotWithAPI(api, newTestService(settings))

	bot.HandleUpdate(ctx, command(42, "quiz"))
	first := api.last()
	if !strings.Contains(first.Text, "What is the capital of Country") {
		t.Fatalf("expected a question, got %q", first.Text)
	}
	keyboard := first.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if len(keyboard.InlineKeyboard) != 4 {
		t.Fatalf("expected 4 option rows, got %d", len(keyboard.InlineKeyboard))
	}

	// first option is the capital in the test bank
	for i := 0; i < 2; i++ {
		keyboard := api.last().ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		bot.HandleUpdate(ctx, press(42, *keyboard.InlineKeyboard[0][0].CallbackData))
	}

	over := api.last()
	if !strings.Contains(over.Text, "Game Over!") || !strings.Contains(over.Text, "New high score!") {
		t.Fatalf("expected game over with confetti, got %q", over.Text)
	}
	stored, _ := settings.Load(ctx, "tg:42")
	if stored.HighScore != 2 {
		t.Fatalf("expected high score 2 stored, got %d", stored.HighScore)
	}
	if api.requests != 2 {
		t.Fatalf("expected each callback acknowledged, got %d", api.requests)
	}

	bot.HandleUpdate(ctx, press(42, "restart"))
	if !strings.Contains(api.last().Text, "Question 1/2") {
		t.Fatalf("expected fresh game, got %q", api.last().Text)
	}
}

func TestStaleButtonIsRejected(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBotWithAPI(api, newTestService(memory.NewSettingsStore()))

	bot.HandleUpdate(ctx, command(7, "quiz"))
	bot.HandleUpdate(ctx, press(7, "answer:not-the-current-question:0"))
	if got := api.last().Text; got != "That question has already been answered." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestSettingsOverTelegram(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBotWithAPI(api, newTestService(memory.NewSettingsStore()))

	bot.HandleUpdate(ctx, command(9, "settings"))
	if !strings.Contains(api.last().Text, "Difficulty: Normal") || !strings.Contains(api.last().Text, "Sound effects: on") {
		t.Fatalf("unexpected settings %q", api.last().Text)
	}

	bot.HandleUpdate(ctx, press(9, "sound:toggle"))
	if !strings.Contains(api.last().Text, "Sound effects: off") {
		t.Fatalf("expected sound off, got %q", api.last().Text)
	}

	bot.HandleUpdate(ctx, press(9, "difficulty:Hard"))
	found := false
	for _, msg := range api.sent {
		if msg.Text == "Difficulty set to Hard." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected difficulty confirmation")
	}

	bot.HandleUpdate(ctx, press(9, "difficulty:Extreme"))
	if !strings.Contains(api.last().Text, domain.ErrUnknownDifficulty.Error()) {
		t.Fatalf("expected difficulty error, got %q", api.last().Text)
	}
}

func TestAnswerWithoutSession(t *testing.T) {
	api := &fakeAPI{}
	bot := NewBotWithAPI(api, newTestService(memory.NewSettingsStore()))
	bot.HandleUpdate(context.Background(), press(5, "answer:q0:0"))
	if got := api.last().Text; got != "No quiz running. Send /quiz to start one." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestIdleChatSessionIsEnded(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	settings := memory.NewSettingsStore()
	service := newTestService(settings)
	bot := NewBotWithAPI(api, service)

	bot.HandleUpdate(ctx, command(11, "quiz"))
	bot.Sweep(ctx, time.Now().Add(-time.Hour))
	if _, err := service.State(ctx, "tg:11"); err != nil {
		t.Fatalf("expected active chat kept, got %v", err)
	}

	bot.Sweep(ctx, time.Now().Add(time.Hour))
	if _, err := service.State(ctx, "tg:11"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected idle chat session ended, got %v", err)
	}
	if stored, _ := settings.Load(ctx, "tg:11"); stored.UpdatedAt.IsZero() {
		t.Fatalf("expected settings saved for idle chat")
	}
	if len(bot.chats) != 0 {
		t.Fatalf("expected idle chat forgotten, got %d tracked", len(bot.chats))
	}

	bot.HandleUpdate(ctx, press(11, "play"))
	if !strings.Contains(api.last().Text, "Question 1/2") {
		t.Fatalf("expected a fresh game after eviction, got %q", api.last().Text)
	}
}

func TestParseCallback(t *testing.T) {
	action, arg := parseCallback("answer:3f2c:2")
	if action != "answer" || arg != "3f2c:2" {
		t.Fatalf("unexpected parse %q %q", action, arg)
	}
	action, arg = parseCallback("restart")
	if action != "restart" || arg != "" {
		t.Fatalf("unexpected parse %q %q", action, arg)
	}
}

func command(chatID int64, name string) tgbotapi.Update {
	text := "/" + name
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func press(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func newTestService(settings app.SettingsStore) *app.QuizService {
	sets := make(map[domain.Difficulty][]domain.Question)
	for _, d := range domain.Difficulties {
		questions := make([]domain.Question, 0, 2)
		for i := 0; i < 2; i++ {
			capital := fmt.Sprintf("Capital %d", i)
			questions = append(questions, domain.Question{
				ID:      fmt.Sprintf("%s-q%d", d, i),
				Country: fmt.Sprintf("Country %d", i),
				Capital: capital,
				Options: []string{capital, "Decoy A", "Decoy B", "Decoy C"},
			})
		}
		sets[d] = questions
	}
	provider := app.NewQuestionProviderWithRand(memory.NewStaticQuestionBank(sets), rand.New(rand.NewSource(1)))
	return app.NewQuizService(memory.NewSessionStore(), settings, provider, nil)
}
