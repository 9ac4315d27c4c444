package lesson

import (
	"errors"

	"github.com/mwalimu/darasa/core/quiz"
)

// Section kinds
const (
	KindText = "text" // instructional prose (markdown)
	KindCode = "code" // code listing
	KindDemo = "demo" // pointer to one of the interactive demo endpoints
)

var (
	// errors
	ErrNotFound = errors.New("chapter not found")
	ErrNoQuiz   = errors.New("chapter has no quiz")
)

type (
	// Section is one block of a chapter: prose, a code listing, or a pointer
	// to an interactive demo.
	Section struct {
		Kind     string `yaml:"kind" json:"kind"`
		Title    string `yaml:"title,omitempty" json:"title,omitempty"`
		Body     string `yaml:"body,omitempty" json:"body,omitempty"`
		Language string `yaml:"language,omitempty" json:"language,omitempty"`
		DemoID   string `yaml:"demo_id,omitempty" json:"demo_id,omitempty"`
	}

	// Chapter is one self-contained lesson page.
	Chapter struct {
		Slug     string     `yaml:"slug" json:"slug"`
		Number   int        `yaml:"number" json:"number"`
		Part     string     `yaml:"part" json:"part"`
		Title    string     `yaml:"title" json:"title"`
		Minutes  int        `yaml:"minutes,omitempty" json:"minutes,omitempty"`
		Sections []Section  `yaml:"sections" json:"sections"`
		Quiz     *quiz.Quiz `yaml:"quiz,omitempty" json:"quiz,omitempty"`
	}

	// ChapterRef is the lightweight form used in listings and navigation.
	ChapterRef struct {
		Slug   string `json:"slug"`
		Number int    `json:"number"`
		Title  string `json:"title"`
	}

	// Nav gives the previous and next chapters in reading order; nil at the
	// ends of the course.
	Nav struct {
		Prev *ChapterRef `json:"prev"`
		Next *ChapterRef `json:"next"`
	}

	// PartGroup groups chapter refs under their course part, in order.
	PartGroup struct {
		Part     string       `json:"part"`
		Chapters []ChapterRef `json:"chapters"`
	}
)

func (c Chapter) ref() ChapterRef {
	return ChapterRef{Slug: c.Slug, Number: c.Number, Title: c.Title}
}

// HasQuiz reports whether the chapter ends with a knowledge check.
func (c Chapter) HasQuiz() bool {
	return c.Quiz != nil && len(c.Quiz.Questions) > 0
}
