package quiz

import (
	"github.com/mwalimu/darasa/core"
)

// Verdict bands; perfect scores congratulate, 60% and up encourage, anything
// lower sends the reader back to the chapter.
const (
	verdictPerfect = "Excellent! You have mastered this chapter."
	verdictGood    = "Good! Review the sections you missed."
	verdictReview  = "Please review this chapter and try again."

	goodThreshold = 0.6
)

type Service struct{}

func NewService() *Service { return &Service{} }

// Grade scores sub against the quiz key: one point per equality match.
// Submitting again simply produces a fresh Result; there is no attempt
// history.
func (svc *Service) Grade(q Quiz, sub Submission) (Result, error) {
	if len(sub.Answers) != len(q.Questions) {
		return Result{}, core.NewValidationError(nil, core.FieldError{
			Field: "answers",
			Error: "expected one answer per question",
		})
	}

	res := Result{Total: len(q.Questions)}
	for i, qn := range q.Questions {
		ok := qn.correct(sub.Answers[i])
		if ok {
			res.Score++
		}
		res.Feedback = append(res.Feedback, qn.feedback(i, ok))
	}

	switch {
	case res.Score == res.Total:
		res.Perfect = true
		res.Verdict = verdictPerfect
	case float64(res.Score) >= goodThreshold*float64(res.Total):
		res.Verdict = verdictGood
	default:
		res.Verdict = verdictReview
	}
	return res, nil
}
