// Package telegram runs the quiz as a Telegram chat, one session per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// DefaultIdleTimeout is how long a chat may stay silent before its session is ended.
const DefaultIdleTimeout = 30 * time.Minute

type Bot struct {
	api         API
	service     *app.QuizService
	idleTimeout time.Duration

	mu    sync.Mutex
	chats map[int64]struct{}
}

// NewBot authorizes token against the Bot API.
func NewBot(token string, service *app.QuizService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Printf("authorised on telegram account %s", api.Self.UserName)
	return NewBotWithAPI(api, service), nil
}

// NewBotWithAPI is used by tests with a fake API.
func NewBotWithAPI(api API, service *app.QuizService) *Bot {
	return &Bot{
		api:         api,
		service:     service,
		idleTimeout: DefaultIdleTimeout,
		chats:       make(map[int64]struct{}),
	}
}

// SetIdleTimeout changes how long a silent chat keeps its session. Zero or less keeps the default.
func (b *Bot) SetIdleTimeout(d time.Duration) {
	if d > 0 {
		b.idleTimeout = d
	}
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	sweep := time.NewTicker(max(b.idleTimeout/2, time.Second))
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			b.Sweep(context.WithoutCancel(ctx), time.Now().Add(time.Hour))
			return nil
		case <-sweep.C:
			b.Sweep(ctx, time.Now().Add(-b.idleTimeout))
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// Sweep ends the sessions of chats with no activity since cutoff and forgets them.
func (b *Bot) Sweep(ctx context.Context, cutoff time.Time) {
	b.mu.Lock()
	chats := make([]int64, 0, len(b.chats))
	for chatID := range b.chats {
		chats = append(chats, chatID)
	}
	b.mu.Unlock()

	for _, chatID := range chats {
		ended, err := b.service.EndIfIdle(ctx, profileID(chatID), cutoff)
		if err != nil {
			log.Printf("end idle telegram chat %d: %v", chatID, err)
		}
		if ended {
			b.mu.Lock()
			delete(b.chats, chatID)
			b.mu.Unlock()
		}
	}
}

func (b *Bot) track(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats[chatID] = struct{}{}
}

// HandleUpdate dispatches a single command or button press.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil && update.Message.IsCommand() {
		chatID := update.Message.Chat.ID
		b.track(chatID)
		switch update.Message.Command() {
		case "start":
			b.sendMainMenu(chatID)
		case "quiz":
			b.startQuiz(ctx, chatID)
		case "settings":
			b.sendSettings(ctx, chatID)
		default:
			b.sendText(chatID, "Unknown command. Try /quiz or /settings.")
		}
	}
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("answer callback: %v", err)
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	b.track(chatID)

	action, arg := parseCallback(callback.Data)
	switch action {
	case "play":
		b.startQuiz(ctx, chatID)
	case "answer":
		b.answer(ctx, chatID, arg)
	case "restart":
		b.restart(ctx, chatID)
	case "settings":
		b.sendSettings(ctx, chatID)
	case "difficulty":
		b.changeDifficulty(ctx, chatID, arg)
	case "sound":
		b.toggleSound(ctx, chatID)
	default:
		b.sendText(chatID, "Unknown action.")
	}
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64) {
	state, err := b.service.Start(ctx, profileID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendState(chatID, state)
}

// answer expects arg as "<question id>:<option index>" so presses on stale keyboards are rejected.
func (b *Bot) answer(ctx context.Context, chatID int64, arg string) {
	profile := profileID(chatID)
	state, err := b.service.State(ctx, profile)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if state.GameOver() {
		b.sendState(chatID, state)
		return
	}

	questionID, rawIndex, _ := strings.Cut(arg, ":")
	index, err := strconv.Atoi(rawIndex)
	if questionID != state.Question.ID || err != nil || index < 0 || index >= len(state.Question.Options) {
		b.sendText(chatID, "That question has already been answered.")
		return
	}

	tr, err := b.service.SubmitAnswer(ctx, profile, state.Question.Options[index])
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendText(chatID, tr.Result.Title)
	b.sendState(chatID, tr.State)
}

func (b *Bot) restart(ctx context.Context, chatID int64) {
	profile := profileID(chatID)
	if _, err := b.service.Start(ctx, profile); err != nil {
		b.sendError(chatID, err)
		return
	}
	tr, err := b.service.Restart(ctx, profile)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendState(chatID, tr.State)
}

func (b *Bot) changeDifficulty(ctx context.Context, chatID int64, name string) {
	difficulty := domain.Difficulty(name)
	_, state, err := b.service.UpdateSettings(ctx, profileID(chatID), domain.SettingsUpdate{Difficulty: &difficulty})
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendText(chatID, fmt.Sprintf("Difficulty set to %s.", state.Difficulty))
	b.sendState(chatID, state)
}

func (b *Bot) toggleSound(ctx context.Context, chatID int64) {
	profile := profileID(chatID)
	current, err := b.service.Settings(ctx, profile)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	enabled := !current.SoundEnabled
	if _, _, err := b.service.UpdateSettings(ctx, profile, domain.SettingsUpdate{SoundEnabled: &enabled}); err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendSettings(ctx, chatID)
}

func (b *Bot) sendMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "*Capital Quiz*\nName the capital, keep your lives.")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Play", "play"),
			tgbotapi.NewInlineKeyboardButtonData("Settings", "settings"),
		),
	)
	b.send(msg)
}

func (b *Bot) sendSettings(ctx context.Context, chatID int64) {
	settings, err := b.service.Settings(ctx, profileID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, renderSettings(settings))
	msg.ReplyMarkup = settingsKeyboard(settings)
	b.send(msg)
}

func (b *Bot) sendState(chatID int64, state domain.GameState) {
	if state.GameOver() {
		msg := tgbotapi.NewMessage(chatID, renderGameOver(state))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Restart Quiz", "restart")),
		)
		b.send(msg)
		return
	}
	msg := tgbotapi.NewMessage(chatID, renderQuestion(state))
	msg.ReplyMarkup = questionKeyboard(*state.Question)
	b.send(msg)
}

func (b *Bot) sendError(chatID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		b.sendText(chatID, "No quiz running. Send /quiz to start one.")
	default:
		log.Printf("telegram chat %d: %v", chatID, err)
		b.sendText(chatID, "Something went wrong: "+err.Error())
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("telegram send: %v", err)
	}
}

func profileID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
