package domain

import (
	"fmt"
	"math"
	"strconv"
)

const (
	QuizQuestionCount = 10
	QuizMinAnswer     = 1
	QuizMaxAnswer     = 5
	// AverageLoadScore is the population baseline the comparison is computed against.
	AverageLoadScore = 42
)

// QuizResult is the scored outcome of one load quiz submission.
type QuizResult struct {
	Score      int
	Comparison string
	Message    string
}

// ValidateQuizAnswers requires exactly ten answers, each within [1,5]. Fractions are accepted.
func ValidateQuizAnswers(answers []float64) error {
	if len(answers) != QuizQuestionCount {
		return fmt.Errorf("%w: %d answers required", ErrInvalidInput, QuizQuestionCount)
	}
	for _, a := range answers {
		if math.IsNaN(a) || a < QuizMinAnswer || a > QuizMaxAnswer {
			return fmt.Errorf("%w: each answer must be %d-%d", ErrInvalidInput, QuizMinAnswer, QuizMaxAnswer)
		}
	}
	return nil
}

// ScoreQuiz converts answers to a 0-100 load score and compares it with the average.
func ScoreQuiz(answers []float64) (QuizResult, error) {
	if err := ValidateQuizAnswers(answers); err != nil {
		return QuizResult{}, err
	}

	var total float64
	for _, a := range answers {
		total += a
	}
	maxTotal := float64(QuizQuestionCount * QuizMaxAnswer)
	score := int(math.Round(total / maxTotal * 100))

	diff := score - AverageLoadScore
	result := QuizResult{Score: score, Comparison: strconv.Itoa(diff)}
	switch {
	case diff > 0:
		result.Comparison = "+" + result.Comparison
		result.Message = fmt.Sprintf("You're carrying %d%% more load than average", diff)
	case diff < 0:
		result.Message = fmt.Sprintf("You're carrying %d%% less load than average", -diff)
	default:
		result.Message = "You're carrying an average mental load"
	}
	return result, nil
}
