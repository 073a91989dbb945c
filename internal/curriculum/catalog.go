// Package curriculum holds the static catalog of subjects, concepts and
// lessons.
package curriculum

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/tutor/internal/progression"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Subject struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Concept is a taxonomic unit of curriculum content.
type Concept struct {
	ID         string                 `yaml:"id"`
	Subject    string                 `yaml:"subject"`
	SubTopic   string                 `yaml:"sub_topic"`
	Difficulty progression.Difficulty `yaml:"difficulty"`
}

type Example struct {
	Question string   `yaml:"question"`
	Steps    []string `yaml:"steps"`
	Answer   string   `yaml:"answer"`
}

// Check is a comprehension question embedded in a lesson.
type Check struct {
	Question string   `yaml:"question"`
	Answer   string   `yaml:"answer"`
	Advisory string   `yaml:"advisory"`
	Keywords []string `yaml:"keywords"`
}

type Lesson struct {
	Slug              string                 `yaml:"slug"`
	Title             string                 `yaml:"title"`
	ConceptID         string                 `yaml:"concept"`
	Subject           string                 `yaml:"-"`
	Order             int                    `yaml:"order"`
	Difficulty        progression.Difficulty `yaml:"difficulty"`
	LearningObjective string                 `yaml:"learning_objective"`
	TeachIntro        string                 `yaml:"teach_intro"`
	KeyPoints         []string               `yaml:"key_points"`
	Example           Example                `yaml:"example"`
	Checks            []Check                `yaml:"checks"`
}

// Explanation is the lesson's teaching text as one block, used as context
// for generated hints and answers.
func (l *Lesson) Explanation() string {
	var b strings.Builder
	b.WriteString(l.TeachIntro)
	for _, p := range l.KeyPoints {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}

type document struct {
	Subjects []Subject `yaml:"subjects"`
	Concepts []Concept `yaml:"concepts"`
	Lessons  []Lesson  `yaml:"lessons"`
}

// Catalog is an indexed, validated curriculum.
type Catalog struct {
	subjects  []Subject
	concepts  map[string]*Concept
	lessons   map[string]*Lesson
	bySubject map[string][]*Lesson
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return build(doc), nil
}

// LoadFile loads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curriculum: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded catalog. It panics if the embedded data is
// invalid, which the package tests guard against.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("curriculum: embedded catalog: %v", err))
	}
	return c
}

func build(doc document) *Catalog {
	c := &Catalog{
		subjects:  doc.Subjects,
		concepts:  make(map[string]*Concept, len(doc.Concepts)),
		lessons:   make(map[string]*Lesson, len(doc.Lessons)),
		bySubject: make(map[string][]*Lesson),
	}
	for i := range doc.Concepts {
		c.concepts[doc.Concepts[i].ID] = &doc.Concepts[i]
	}
	for i := range doc.Lessons {
		l := &doc.Lessons[i]
		concept := c.concepts[l.ConceptID]
		l.Subject = concept.Subject
		if l.Difficulty == 0 {
			l.Difficulty = concept.Difficulty
		}
		c.lessons[l.Slug] = l
		c.bySubject[l.Subject] = append(c.bySubject[l.Subject], l)
	}
	for _, ls := range c.bySubject {
		slices.SortStableFunc(ls, func(a, b *Lesson) int { return a.Order - b.Order })
	}
	return c
}

func (c *Catalog) Subjects() []Subject {
	return slices.Clone(c.subjects)
}

func (c *Catalog) Lesson(slug string) (*Lesson, bool) {
	l, ok := c.lessons[slug]
	return l, ok
}

func (c *Catalog) Concept(id string) (*Concept, bool) {
	cc, ok := c.concepts[id]
	return cc, ok
}

// Concepts returns all concepts of a subject, or every concept when subject
// is empty.
func (c *Catalog) Concepts(subject string) []*Concept {
	out := lo.Filter(lo.Values(c.concepts), func(cc *Concept, _ int) bool {
		return subject == "" || cc.Subject == subject
	})
	slices.SortFunc(out, func(a, b *Concept) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// LessonsFor returns a subject's lessons in teaching order.
func (c *Catalog) LessonsFor(subject string) []*Lesson {
	return slices.Clone(c.bySubject[subject])
}

// AllLessons returns every lesson grouped by subject in catalog order.
func (c *Catalog) AllLessons() []*Lesson {
	var out []*Lesson
	for _, s := range c.subjects {
		out = append(out, c.bySubject[s.ID]...)
	}
	return out
}

// Neighbors returns the lessons before and after slug within its subject.
// Either may be nil.
func (c *Catalog) Neighbors(slug string) (prev, next *Lesson) {
	l, ok := c.lessons[slug]
	if !ok {
		return nil, nil
	}
	ls := c.bySubject[l.Subject]
	i := slices.Index(ls, l)
	if i > 0 {
		prev = ls[i-1]
	}
	if i >= 0 && i < len(ls)-1 {
		next = ls[i+1]
	}
	return prev, next
}

// SubTopics returns the distinct sub-topic labels of a subject, sorted.
func (c *Catalog) SubTopics(subject string) []string {
	topics := lo.Uniq(lo.Map(c.Concepts(subject), func(cc *Concept, _ int) string { return cc.SubTopic }))
	slices.Sort(topics)
	return topics
}

// ConceptFor looks up the concept for a subject and sub-topic label,
// matched case-insensitively.
func (c *Catalog) ConceptFor(subject, subTopic string) (*Concept, bool) {
	return lo.Find(c.Concepts(subject), func(cc *Concept) bool {
		return strings.EqualFold(cc.SubTopic, subTopic)
	})
}
