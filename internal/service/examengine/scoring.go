package examengine

import (
	"math"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// ScoreSummary: итог подсчета баллов
type ScoreSummary struct {
	Score        int
	CorrectCount int
	Total        int
	Passed       bool
	Incorrect    []entity.IncorrectAnswer
}

// Score считает процент правильных ответов по списку вопросов сессии.
// Вопрос засчитан, если среди ответов на него есть правильный; ответы на чужие вопросы игнорируются.
// Результат не зависит от порядка ответов.
func Score(answers []entity.Answer, questions []entity.Question, passingScore int) ScoreSummary {
	if passingScore <= 0 {
		passingScore = entity.DefaultPassingScore
	}

	byQuestion := make(map[string][]entity.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	summary := ScoreSummary{Total: len(questions)}
	for i := range questions {
		q := &questions[i]
		given := byQuestion[q.ID]
		if len(given) == 0 {
			continue
		}
		correct := false
		for _, a := range given {
			if q.IsCorrect(a.SelectedAnswer) {
				correct = true
				break
			}
		}
		if correct {
			summary.CorrectCount++
			continue
		}
		summary.Incorrect = append(summary.Incorrect, entity.IncorrectAnswer{
			QuestionID:     q.ID,
			QuestionText:   q.Text,
			SelectedAnswer: given[len(given)-1].SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			Explanation:    q.Explanation,
			Category:       q.Category,
		})
	}

	if summary.Total == 0 {
		return summary
	}
	summary.Score = int(math.Round(float64(summary.CorrectCount) / float64(summary.Total) * 100))
	summary.Passed = summary.Score >= passingScore
	return summary
}
