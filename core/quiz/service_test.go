package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimu/darasa/core"
)

func sampleQuiz() Quiz {
	return Quiz{Questions: []Question{
		{
			Prompt:      "Why should passwords be hashed?",
			Kind:        KindChoice,
			Options:     []string{"To make them longer", "To prevent storing plain text passwords", "To make login faster"},
			Answer:      "To prevent storing plain text passwords",
			Explanation: "Hashing prevents storing plain text.",
		},
		{
			Prompt:  "Where should authentication state be stored?",
			Kind:    KindChoice,
			Options: []string{"Local variables", "The session store", "URL parameters"},
			Answer:  "The session store",
		},
		{
			Prompt: "Session state persists across pages",
			Kind:   KindCheckbox,
			Answer: "true",
		},
	}}
}

func TestService_Grade_PerfectScore(t *testing.T) {
	svc := NewService()

	res, err := svc.Grade(sampleQuiz(), Submission{Answers: []string{
		"To prevent storing plain text passwords",
		"The session store",
		"true",
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.Perfect)
	assert.Equal(t, verdictPerfect, res.Verdict)
	assert.Equal(t, []string{"Q1: Correct!", "Q2: Correct!", "Q3: Correct!"}, res.Feedback)
}

func TestService_Grade_PartialScore(t *testing.T) {
	svc := NewService()

	res, err := svc.Grade(sampleQuiz(), Submission{Answers: []string{
		"To make them longer",
		"The session store",
		"true",
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Score)
	assert.False(t, res.Perfect)
	assert.Equal(t, verdictGood, res.Verdict)
	// a wrong answer gets the explanation from the key
	assert.Equal(t, "Q1: Hashing prevents storing plain text.", res.Feedback[0])
}

func TestService_Grade_LowScore(t *testing.T) {
	svc := NewService()

	res, err := svc.Grade(sampleQuiz(), Submission{Answers: []string{"", "", "false"}})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, verdictReview, res.Verdict)
}

func TestService_Grade_AnswerCountMismatch(t *testing.T) {
	svc := NewService()

	_, err := svc.Grade(sampleQuiz(), Submission{Answers: []string{"only one"}})
	require.Error(t, err)

	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "answers", vErr.Fields[0].Field)
}

func TestQuiz_Validate(t *testing.T) {
	tests := []struct {
		name    string
		quiz    Quiz
		wantErr bool
	}{
		{name: "valid", quiz: sampleQuiz()},
		{name: "empty", quiz: Quiz{}, wantErr: true},
		{
			name: "answer not an option",
			quiz: Quiz{Questions: []Question{{
				Prompt: "?", Kind: KindChoice,
				Options: []string{"a", "b"}, Answer: "c",
			}}},
			wantErr: true,
		},
		{
			name: "bad checkbox answer",
			quiz: Quiz{Questions: []Question{{
				Prompt: "?", Kind: KindCheckbox, Answer: "yes",
			}}},
			wantErr: true,
		},
		{
			name: "unknown kind",
			quiz: Quiz{Questions: []Question{{
				Prompt: "?", Kind: "essay", Answer: "x",
			}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quiz.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
