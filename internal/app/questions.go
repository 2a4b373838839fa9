package app

import (
	"math/rand"
	"sync"
	"time"

	"capital-quiz/internal/domain"
)

// QuestionBank returns the fixed question set for a difficulty.
type QuestionBank interface {
	Questions(difficulty domain.Difficulty) []domain.Question
}

// QuestionProvider hands out shuffled copies of the bank's question sets.
type QuestionProvider struct {
	bank QuestionBank

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionProvider(bank QuestionBank) *QuestionProvider {
	return NewQuestionProviderWithRand(bank, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuestionProviderWithRand is used by tests that need a fixed shuffle order.
func NewQuestionProviderWithRand(bank QuestionBank, rnd *rand.Rand) *QuestionProvider {
	return &QuestionProvider{bank: bank, rnd: rnd}
}

// Generate returns the difficulty's question set in a uniformly random order.
// Unknown difficulties fall back to Normal.
func (p *QuestionProvider) Generate(difficulty domain.Difficulty) []domain.Question {
	d, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		d = domain.DifficultyNormal
	}
	set := p.bank.Questions(d)
	questions := make([]domain.Question, len(set))
	copy(questions, set)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions
}

// newRand derives an independent generator for a single game.
func (p *QuestionProvider) newRand() *rand.Rand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rand.New(rand.NewSource(p.rnd.Int63()))
}
