package memory

import (
	"capital-quiz/internal/domain"
	"github.com/google/uuid"
)

// QuestionBank is a static question fixture keyed by difficulty.
type QuestionBank struct {
	sets map[domain.Difficulty][]domain.Question
}

// NewQuestionBank returns the built-in capital fixture. Question ids are assigned once here,
// so every set stays the same for the lifetime of the bank.
func NewQuestionBank() *QuestionBank {
	sets := make(map[domain.Difficulty][]domain.Question, len(capitals))
	for difficulty, entries := range capitals {
		questions := make([]domain.Question, 0, len(entries))
		for _, e := range entries {
			questions = append(questions, domain.Question{
				ID:      uuid.NewString(),
				Country: e.country,
				Capital: e.capital,
				Options: e.options,
			})
		}
		sets[difficulty] = questions
	}
	return &QuestionBank{sets: sets}
}

// NewStaticQuestionBank wraps caller-provided sets (useful for tests/demos).
func NewStaticQuestionBank(sets map[domain.Difficulty][]domain.Question) *QuestionBank {
	return &QuestionBank{sets: sets}
}

func (b *QuestionBank) Questions(difficulty domain.Difficulty) []domain.Question {
	return b.sets[difficulty]
}

type capitalEntry struct {
	country string
	capital string
	options []string
}

var capitals = map[domain.Difficulty][]capitalEntry{
	domain.DifficultyEasy: {
		{"France", "Paris", []string{"Paris", "London", "Berlin", "Madrid"}},
		{"Japan", "Tokyo", []string{"Seoul", "Tokyo", "Beijing", "Bangkok"}},
		{"Italy", "Rome", []string{"Rome", "Milan", "Venice", "Naples"}},
		{"Spain", "Madrid", []string{"Barcelona", "Madrid", "Seville", "Lisbon"}},
		{"Germany", "Berlin", []string{"Munich", "Hamburg", "Berlin", "Vienna"}},
		{"United Kingdom", "London", []string{"London", "Dublin", "Edinburgh", "Paris"}},
		{"Russia", "Moscow", []string{"Saint Petersburg", "Moscow", "Kyiv", "Minsk"}},
		{"Egypt", "Cairo", []string{"Cairo", "Alexandria", "Khartoum", "Tripoli"}},
		{"Mexico", "Mexico City", []string{"Guadalajara", "Mexico City", "Monterrey", "Havana"}},
		{"China", "Beijing", []string{"Shanghai", "Hong Kong", "Beijing", "Taipei"}},
	},
	domain.DifficultyNormal: {
		{"Canada", "Ottawa", []string{"Toronto", "Ottawa", "Vancouver", "Montreal"}},
		{"Brazil", "Brasília", []string{"Rio de Janeiro", "São Paulo", "Brasília", "Salvador"}},
		{"Argentina", "Buenos Aires", []string{"Buenos Aires", "Santiago", "Montevideo", "Córdoba"}},
		{"Kenya", "Nairobi", []string{"Mombasa", "Nairobi", "Kampala", "Addis Ababa"}},
		{"Norway", "Oslo", []string{"Oslo", "Stockholm", "Bergen", "Copenhagen"}},
		{"Greece", "Athens", []string{"Thessaloniki", "Athens", "Sparta", "Nicosia"}},
		{"India", "New Delhi", []string{"Mumbai", "New Delhi", "Kolkata", "Bangalore"}},
		{"South Korea", "Seoul", []string{"Busan", "Seoul", "Pyongyang", "Incheon"}},
		{"Portugal", "Lisbon", []string{"Porto", "Lisbon", "Madrid", "Coimbra"}},
		{"Thailand", "Bangkok", []string{"Bangkok", "Chiang Mai", "Hanoi", "Phuket"}},
		{"Poland", "Warsaw", []string{"Kraków", "Warsaw", "Gdańsk", "Prague"}},
		{"Peru", "Lima", []string{"Cusco", "Lima", "Quito", "Bogotá"}},
	},
	domain.DifficultyHard: {
		{"Australia", "Canberra", []string{"Sydney", "Melbourne", "Canberra", "Perth"}},
		{"Turkey", "Ankara", []string{"Istanbul", "Ankara", "Izmir", "Antalya"}},
		{"Nigeria", "Abuja", []string{"Lagos", "Abuja", "Kano", "Ibadan"}},
		{"Switzerland", "Bern", []string{"Zurich", "Geneva", "Bern", "Basel"}},
		{"New Zealand", "Wellington", []string{"Auckland", "Wellington", "Christchurch", "Queenstown"}},
		{"Morocco", "Rabat", []string{"Casablanca", "Marrakesh", "Rabat", "Fez"}},
		{"Vietnam", "Hanoi", []string{"Ho Chi Minh City", "Hanoi", "Da Nang", "Hue"}},
		{"Pakistan", "Islamabad", []string{"Karachi", "Lahore", "Islamabad", "Peshawar"}},
		{"Myanmar", "Naypyidaw", []string{"Yangon", "Naypyidaw", "Mandalay", "Bago"}},
		{"Kazakhstan", "Astana", []string{"Almaty", "Astana", "Shymkent", "Bishkek"}},
		{"Tanzania", "Dodoma", []string{"Dar es Salaam", "Dodoma", "Arusha", "Zanzibar City"}},
		{"Bolivia", "Sucre", []string{"La Paz", "Sucre", "Santa Cruz", "Cochabamba"}},
	},
}
