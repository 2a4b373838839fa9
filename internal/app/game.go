package app

import (
	"fmt"
	"math/rand"

	"capital-quiz/internal/domain"
)

var feedbackMessages = []string{
	"Don't give up! Try again to beat your score.",
	"Great effort! Practice makes perfect.",
	"Keep going! You'll get it next time.",
	"Nice try! Challenge yourself to improve.",
	"Well played! See if you can score higher.",
}

// Game is the quiz session state machine. It is not safe for concurrent use; Session serializes access.
type Game struct {
	difficulty   domain.Difficulty
	questions    []domain.Question
	index        int
	score        int
	lives        int
	highScore    int
	phase        domain.Phase
	newHighScore bool
	feedback     string
	rnd          *rand.Rand
}

// NewGame starts a session over questions, which the game takes ownership of.
func NewGame(difficulty domain.Difficulty, questions []domain.Question, highScore int, rnd *rand.Rand) *Game {
	g := &Game{
		difficulty: difficulty,
		questions:  questions,
		lives:      domain.MaxLives,
		highScore:  max(highScore, 0),
		rnd:        rnd,
	}
	if len(questions) == 0 {
		g.phase = domain.PhaseGameOver
	}
	return g
}

// Dispatch applies ev and returns the resulting state plus requested effects.
// A failed dispatch leaves the game untouched.
func (g *Game) Dispatch(ev domain.Event) (domain.Transition, error) {
	switch e := ev.(type) {
	case domain.AnswerSubmitted:
		return g.answer(e.Option)
	case domain.Restarted:
		return g.restart(), nil
	default:
		return domain.Transition{}, domain.ErrUnknownEvent
	}
}

func (g *Game) answer(option string) (domain.Transition, error) {
	if g.phase == domain.PhaseGameOver {
		return domain.Transition{}, domain.ErrGameOver
	}
	question := g.questions[g.index]
	if !question.HasOption(option) {
		return domain.Transition{}, domain.ErrOptionNotFound
	}

	result := &domain.AnswerResult{CorrectAnswer: question.Capital}
	var effects []domain.Effect
	if option == question.Capital {
		g.score++
		result.Correct = true
		result.Title = "Correct!"
		effects = append(effects, domain.Effect{Kind: domain.EffectPlaySound, Sound: domain.SoundCorrect})
	} else {
		g.lives--
		result.Title = fmt.Sprintf("Wrong! The correct answer is %s.", question.Capital)
		effects = append(effects,
			domain.Effect{Kind: domain.EffectPlaySound, Sound: domain.SoundWrong},
			domain.Effect{Kind: domain.EffectLifeLost, Remaining: g.lives},
		)
	}

	if g.lives == 0 || g.index == len(g.questions)-1 {
		effects = append(effects, g.finish()...)
	} else {
		g.index++
	}

	return domain.Transition{State: g.Snapshot(), Result: result, Effects: effects}, nil
}

func (g *Game) finish() []domain.Effect {
	var effects []domain.Effect
	g.phase = domain.PhaseGameOver
	if g.score > g.highScore {
		g.highScore = g.score
		g.newHighScore = true
		effects = append(effects, domain.Effect{Kind: domain.EffectShowConfetti})
	}
	g.feedback = feedbackMessages[g.rnd.Intn(len(feedbackMessages))]
	return append(effects, domain.Effect{Kind: domain.EffectPlaySound, Sound: domain.SoundGameOver})
}

func (g *Game) restart() domain.Transition {
	g.RaiseHighScore(g.score)
	g.score = 0
	g.lives = domain.MaxLives
	g.index = 0
	g.newHighScore = false
	g.feedback = ""
	g.rnd.Shuffle(len(g.questions), func(i, j int) {
		g.questions[i], g.questions[j] = g.questions[j], g.questions[i]
	})
	g.phase = domain.PhasePlaying
	if len(g.questions) == 0 {
		g.phase = domain.PhaseGameOver
	}
	return domain.Transition{
		State:   g.Snapshot(),
		Effects: []domain.Effect{{Kind: domain.EffectHideConfetti}},
	}
}

// RaiseHighScore lifts the high score to n; lower values are ignored.
func (g *Game) RaiseHighScore(n int) {
	if n > g.highScore {
		g.highScore = n
	}
}

// Snapshot returns the current state.
func (g *Game) Snapshot() domain.GameState {
	state := domain.GameState{
		Phase:        g.phase,
		Difficulty:   g.difficulty,
		Index:        g.index,
		Total:        len(g.questions),
		Score:        g.score,
		Lives:        g.lives,
		MaxLives:     domain.MaxLives,
		HighScore:    g.highScore,
		NewHighScore: g.newHighScore,
		Feedback:     g.feedback,
	}
	if g.phase == domain.PhasePlaying {
		q := g.questions[g.index]
		q.Options = append([]string(nil), q.Options...)
		state.Question = &q
	}
	return state
}
