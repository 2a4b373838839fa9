package domain

import (
	"strings"
	"time"
)

// MaxLives is the number of lives a session starts with.
const MaxLives = 5

// Difficulty selects which question set is generated.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

// ParseDifficulty matches a difficulty name case-insensitively.
func ParseDifficulty(raw string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(strings.TrimSpace(raw), string(d)) {
			return d, nil
		}
	}
	return "", ErrUnknownDifficulty
}

func (d Difficulty) String() string {
	return string(d)
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	_, err := ParseDifficulty(string(d))
	return err == nil
}

// Question is a single "capital of" prompt. Options holds four entries, one of which is Capital.
type Question struct {
	ID      string   `json:"id"`
	Country string   `json:"country"`
	Capital string   `json:"capital"`
	Options []string `json:"options"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Settings are the values persisted per profile across process restarts.
type Settings struct {
	HighScore    int        `json:"highScore" yaml:"highScore"`
	SoundEnabled bool       `json:"soundEnabled" yaml:"soundEnabled"`
	Difficulty   Difficulty `json:"difficultyLevel" yaml:"difficultyLevel"`
	UpdatedAt    time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// DefaultSettings returns the settings of a profile that has never been saved.
func DefaultSettings() Settings {
	return Settings{
		HighScore:    0,
		SoundEnabled: true,
		Difficulty:   DifficultyNormal,
	}
}

// SettingsUpdate carries a partial settings change; nil fields are left alone.
type SettingsUpdate struct {
	SoundEnabled *bool       `json:"soundEnabled,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
}

// Phase is the state of a quiz session.
type Phase int

const (
	PhasePlaying  Phase = iota // questions left and lives remaining
	PhaseGameOver              // out of lives or out of questions
)

var phaseNames = map[Phase]string{
	PhasePlaying:  "Playing",
	PhaseGameOver: "GameOver",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// GameState is a read-only snapshot of a session.
type GameState struct {
	Phase        Phase      `json:"phase"`
	Difficulty   Difficulty `json:"difficulty"`
	Question     *Question  `json:"question,omitempty"`
	Index        int        `json:"index"`
	Total        int        `json:"total"`
	Score        int        `json:"score"`
	Lives        int        `json:"lives"`
	MaxLives     int        `json:"maxLives"`
	HighScore    int        `json:"highScore"`
	NewHighScore bool       `json:"newHighScore"`
	Feedback     string     `json:"feedback,omitempty"`
}

// GameOver reports whether the session has ended.
func (s GameState) GameOver() bool {
	return s.Phase == PhaseGameOver
}

// Event is an input to the session state machine.
type Event interface {
	event()
}

// AnswerSubmitted is sent when the player picks an option.
type AnswerSubmitted struct {
	Option string
}

// Restarted is sent when the player starts over.
type Restarted struct{}

func (AnswerSubmitted) event() {}
func (Restarted) event()       {}

// EffectKind names a side effect the front end should perform.
type EffectKind string

const (
	EffectPlaySound    EffectKind = "playSound"
	EffectLifeLost     EffectKind = "lifeLost"
	EffectShowConfetti EffectKind = "showConfetti"
	EffectHideConfetti EffectKind = "hideConfetti"
)

// Sound names, matching asset file names without extension.
const (
	SoundCorrect  = "correct"
	SoundWrong    = "wrong"
	SoundGameOver = "game_over"
)

// Effect is a side-effect request produced by a transition.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	Sound     string     `json:"sound,omitempty"`
	Remaining int        `json:"remaining,omitempty"`
}

// AnswerResult describes how a submitted answer was judged.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Title         string `json:"title"`
}

// Transition is the outcome of dispatching one event.
type Transition struct {
	State   GameState     `json:"state"`
	Result  *AnswerResult `json:"result,omitempty"`
	Effects []Effect      `json:"effects"`
}
