package quiz

import (
	"fmt"

	"github.com/pkg/errors"
)

// Question kinds
const (
	KindChoice   = "choice"   // single-choice, graded by string equality
	KindCheckbox = "checkbox" // boolean, graded against "true"/"false"
)

type (
	// Question is one fixed-answer question. The answer key never leaves the
	// server: Answer and Explanation are stripped from JSON on purpose.
	Question struct {
		Prompt      string   `yaml:"prompt" json:"prompt"`
		Kind        string   `yaml:"kind" json:"kind"`
		Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
		Answer      string   `yaml:"answer" json:"-"`
		Explanation string   `yaml:"explanation,omitempty" json:"-"`
	}

	Quiz struct {
		Questions []Question `yaml:"questions" json:"questions"`
	}

	// Submission carries one answer per question, in question order.
	Submission struct {
		Answers []string `json:"answers" validate:"required"`
	}

	Result struct {
		Score    int      `json:"score"`
		Total    int      `json:"total"`
		Feedback []string `json:"feedback"`
		Verdict  string   `json:"verdict"`
		Perfect  bool     `json:"perfect"`
	}
)

// Validate checks a quiz definition at catalog load time.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return errors.New("quiz has no questions")
	}
	for i, qn := range q.Questions {
		switch qn.Kind {
		case KindChoice:
			if len(qn.Options) < 2 {
				return errors.Errorf("question %d: choice question needs at least 2 options", i+1)
			}
			if !contains(qn.Options, qn.Answer) {
				return errors.Errorf("question %d: answer is not one of the options", i+1)
			}
		case KindCheckbox:
			if qn.Answer != "true" && qn.Answer != "false" {
				return errors.Errorf("question %d: checkbox answer must be true or false", i+1)
			}
		default:
			return errors.Errorf("question %d: unknown kind %q", i+1, qn.Kind)
		}
		if qn.Prompt == "" {
			return errors.Errorf("question %d: empty prompt", i+1)
		}
	}
	return nil
}

func (qn Question) correct(answer string) bool {
	return answer == qn.Answer
}

func (qn Question) feedback(idx int, correct bool) string {
	if correct {
		return fmt.Sprintf("Q%d: Correct!", idx+1)
	}
	if qn.Explanation != "" {
		return fmt.Sprintf("Q%d: %s", idx+1, qn.Explanation)
	}
	return fmt.Sprintf("Q%d: Incorrect.", idx+1)
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}
