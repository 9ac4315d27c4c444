package lesson

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mwalimu/darasa/core/quiz"
)

// Catalog holds the full set of chapters, loaded once at startup from the
// content documents. It is read-only after construction.
type Catalog struct {
	chapters []Chapter        // sorted by Number
	bySlug   map[string]int   // slug -> index into chapters
	parts    []string         // part names in first-seen (i.e. chapter) order
}

// NewCatalog walks fsys for chapter documents (*.yaml, *.yml), the analogue of
// the host runtime auto-discovering page files, and validates the lot.
func NewCatalog(fsys fs.FS) (*Catalog, error) {
	var chapters []Chapter

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		var ch Chapter
		if err := yaml.Unmarshal(raw, &ch); err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
		if err := validateChapter(ch); err != nil {
			return errors.Wrapf(err, "validating %s", path)
		}
		chapters = append(chapters, ch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, errors.New("no chapter documents found")
	}

	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Number < chapters[j].Number })

	cat := &Catalog{
		chapters: chapters,
		bySlug:   make(map[string]int, len(chapters)),
	}
	seenParts := make(map[string]bool)
	var prevNum int
	for i, ch := range chapters {
		if _, dup := cat.bySlug[ch.Slug]; dup {
			return nil, errors.Errorf("duplicate chapter slug %q", ch.Slug)
		}
		cat.bySlug[ch.Slug] = i
		if i > 0 && ch.Number == prevNum {
			return nil, errors.Errorf("duplicate chapter number %d", ch.Number)
		}
		prevNum = ch.Number
		if !seenParts[ch.Part] {
			seenParts[ch.Part] = true
			cat.parts = append(cat.parts, ch.Part)
		}
	}
	return cat, nil
}

func validateChapter(ch Chapter) error {
	if ch.Slug == "" {
		return errors.New("missing slug")
	}
	if ch.Title == "" {
		return errors.New("missing title")
	}
	if ch.Number <= 0 {
		return errors.New("chapter number must be positive")
	}
	if len(ch.Sections) == 0 {
		return errors.New("chapter has no sections")
	}
	for i, s := range ch.Sections {
		switch s.Kind {
		case KindText, KindCode:
			if s.Body == "" {
				return errors.Errorf("section %d: empty body", i+1)
			}
		case KindDemo:
			if s.DemoID == "" {
				return errors.Errorf("section %d: demo section needs demo_id", i+1)
			}
		default:
			return errors.Errorf("section %d: unknown kind %q", i+1, s.Kind)
		}
	}
	if ch.Quiz != nil {
		if err := ch.Quiz.Validate(); err != nil {
			return errors.Wrap(err, "quiz")
		}
	}
	return nil
}

// Parts lists chapters grouped by course part, in reading order.
func (c *Catalog) Parts() []PartGroup {
	groups := make([]PartGroup, 0, len(c.parts))
	byPart := make(map[string]*PartGroup, len(c.parts))
	for _, p := range c.parts {
		groups = append(groups, PartGroup{Part: p})
		byPart[p] = &groups[len(groups)-1]
	}
	for _, ch := range c.chapters {
		g := byPart[ch.Part]
		g.Chapters = append(g.Chapters, ch.ref())
	}
	return groups
}

// Chapters returns all chapters in reading order.
func (c *Catalog) Chapters() []Chapter {
	out := make([]Chapter, len(c.chapters))
	copy(out, c.chapters)
	return out
}

// Get returns the chapter for slug. Answer keys are excluded from the JSON
// rendering of the returned value, so handlers may serve it as-is.
func (c *Catalog) Get(slug string) (Chapter, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Chapter{}, ErrNotFound
	}
	return c.chapters[i], nil
}

// Nav returns the previous/next chapters around slug; Prev is nil on the
// first chapter and Next is nil on the last.
func (c *Catalog) Nav(slug string) (Nav, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Nav{}, ErrNotFound
	}
	var nav Nav
	if i > 0 {
		ref := c.chapters[i-1].ref()
		nav.Prev = &ref
	}
	if i < len(c.chapters)-1 {
		ref := c.chapters[i+1].ref()
		nav.Next = &ref
	}
	return nav, nil
}

// QuizFor returns the quiz (with its answer key) for slug.
func (c *Catalog) QuizFor(slug string) (quiz.Quiz, error) {
	ch, err := c.Get(slug)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if !ch.HasQuiz() {
		return quiz.Quiz{}, ErrNoQuiz
	}
	return *ch.Quiz, nil
}
