package telegram

import (
	"fmt"
	"strings"

	"capital-quiz/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// parseCallback splits "action:arg"; arg may itself contain colons.
func parseCallback(data string) (string, string) {
	action, arg, _ := strings.Cut(data, ":")
	return action, arg
}

func questionKeyboard(q domain.Question) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, option := range q.Options {
		data := fmt.Sprintf("answer:%s:%d", q.ID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(option, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func settingsKeyboard(settings domain.Settings) tgbotapi.InlineKeyboardMarkup {
	difficulties := make([]tgbotapi.InlineKeyboardButton, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		label := d.String()
		if d == settings.Difficulty {
			label = "• " + label
		}
		difficulties = append(difficulties, tgbotapi.NewInlineKeyboardButtonData(label, "difficulty:"+d.String()))
	}
	sound := "Sound: off"
	if settings.SoundEnabled {
		sound = "Sound: on"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		difficulties,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(sound, "sound:toggle")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Play", "play")),
	)
}

func renderQuestion(state domain.GameState) string {
	return fmt.Sprintf("Question %d/%d   Score: %d   High Score: %d\n%s\n\nWhat is the capital of %s?",
		state.Index+1, state.Total, state.Score, state.HighScore,
		hearts(state.Lives, state.MaxLives),
		state.Question.Country)
}

func renderGameOver(state domain.GameState) string {
	var b strings.Builder
	if state.NewHighScore {
		b.WriteString("🎉🎉🎉 New high score! 🎉🎉🎉\n\n")
	}
	b.WriteString("Game Over!\n")
	fmt.Fprintf(&b, "Your final score is %d.\n", state.Score)
	fmt.Fprintf(&b, "High Score: %d", state.HighScore)
	if state.Feedback != "" {
		b.WriteString("\n\n" + state.Feedback)
	}
	return b.String()
}

func renderSettings(settings domain.Settings) string {
	sound := "off"
	if settings.SoundEnabled {
		sound = "on"
	}
	return fmt.Sprintf("Settings\nDifficulty: %s\nSound effects: %s\nHigh Score: %d", settings.Difficulty, sound, settings.HighScore)
}

func hearts(lives, maxLives int) string {
	return strings.Repeat("❤️", lives) + strings.Repeat("🤍", max(maxLives-lives, 0))
}
