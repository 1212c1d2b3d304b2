package app

import (
	"errors"

	"iga-community/internal/content"
)

var ErrInvalidAnswers = errors.New("answers must cover every question")

type QuizService struct {
	catalog *content.Catalog
}

func NewQuizService(catalog *content.Catalog) *QuizService {
	return &QuizService{catalog: catalog}
}

func (s *QuizService) Questions() []content.Question {
	return s.catalog.Questions
}

func (s *QuizService) Programs() []content.Program {
	return s.catalog.Programs
}

// Recommend scores one point per "yes" for the question's program and
// returns every program tied at the top score, in catalog order. All "no"
// answers recommend every program.
func (s *QuizService) Recommend(answers []bool) ([]content.Program, error) {
	if len(answers) != len(s.catalog.Questions) {
		return nil, ErrInvalidAnswers
	}

	scores := make(map[string]int, len(s.catalog.Programs))
	best := 0
	for i, yes := range answers {
		if !yes {
			continue
		}
		key := s.catalog.Questions[i].Program
		scores[key]++
		if scores[key] > best {
			best = scores[key]
		}
	}

	if best == 0 {
		return s.catalog.Programs, nil
	}
	var winners []content.Program
	for _, p := range s.catalog.Programs {
		if scores[p.Key] == best {
			winners = append(winners, p)
		}
	}
	return winners, nil
}
