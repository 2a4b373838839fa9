// Package terminal runs the quiz on a line-oriented terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
)

// Game reads answers line by line and renders state as plain text.
type Game struct {
	service *app.QuizService
	profile string
	in      io.Reader
	out     io.Writer
}

func NewGame(service *app.QuizService, profile string, in io.Reader, out io.Writer) *Game {
	return &Game{service: service, profile: profile, in: in, out: out}
}

// Run plays until the player quits, input ends or ctx is canceled. Settings are saved on the way out.
func (g *Game) Run(ctx context.Context) error {
	state, err := g.service.Start(ctx, g.profile)
	if err != nil {
		return err
	}
	g.render(state)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(g.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return g.service.End(context.WithoutCancel(ctx), g.profile)
		case line, ok := <-lines:
			if !ok || strings.EqualFold(line, "q") {
				return g.service.End(ctx, g.profile)
			}
			state = g.handle(ctx, state, line)
		}
	}
}

func (g *Game) handle(ctx context.Context, state domain.GameState, line string) domain.GameState {
	if strings.EqualFold(line, "r") {
		tr, err := g.service.Restart(ctx, g.profile)
		if err != nil {
			fmt.Fprintf(g.out, "error: %v\n", err)
			return state
		}
		g.render(tr.State)
		return tr.State
	}
	if state.GameOver() {
		fmt.Fprintln(g.out, "Type r to restart or q to quit.")
		return state
	}

	option, ok := resolveOption(*state.Question, line)
	if !ok {
		fmt.Fprintf(g.out, "Pick 1-%d or type the capital.\n", len(state.Question.Options))
		return state
	}
	tr, err := g.service.SubmitAnswer(ctx, g.profile, option)
	if err != nil {
		if errors.Is(err, domain.ErrGameOver) {
			fmt.Fprintln(g.out, "Type r to restart or q to quit.")
		} else {
			fmt.Fprintf(g.out, "error: %v\n", err)
		}
		return state
	}
	fmt.Fprintln(g.out, tr.Result.Title)
	for _, effect := range tr.Effects {
		if effect.Kind == domain.EffectShowConfetti {
			fmt.Fprintln(g.out, "*** NEW HIGH SCORE! ***")
		}
	}
	g.render(tr.State)
	return tr.State
}

// resolveOption accepts a 1-based option number or the option text, case-insensitively.
func resolveOption(q domain.Question, line string) (string, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(q.Options) {
			return q.Options[n-1], true
		}
		return "", false
	}
	for _, o := range q.Options {
		if strings.EqualFold(o, line) {
			return o, true
		}
	}
	return "", false
}

func (g *Game) render(state domain.GameState) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nCapital Quiz [%s]\n", state.Difficulty)
	fmt.Fprintf(&b, "Score: %d   High Score: %d\n", state.Score, state.HighScore)
	fmt.Fprintf(&b, "Lives: %s\n", hearts(state.Lives, state.MaxLives))

	if state.GameOver() {
		b.WriteString("\nGame Over!\n")
		fmt.Fprintf(&b, "Your final score is %d.\n", state.Score)
		fmt.Fprintf(&b, "High Score: %d\n", state.HighScore)
		if state.Feedback != "" {
			b.WriteString(state.Feedback + "\n")
		}
		b.WriteString("Type r to restart or q to quit.\n")
		io.WriteString(g.out, b.String())
		return
	}

	fmt.Fprintf(&b, "Question %d/%d\n", state.Index+1, state.Total)
	fmt.Fprintf(&b, "What is the capital of %s?\n", state.Question.Country)
	for i, o := range state.Question.Options {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, o)
	}
	b.WriteString("> ")
	io.WriteString(g.out, b.String())
}

func hearts(lives, maxLives int) string {
	return strings.Repeat("♥", lives) + strings.Repeat("♡", max(maxLives-lives, 0))
}
