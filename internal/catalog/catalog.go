// Package catalog holds the static RFP question configuration: ordered
// sections, each with ordered questions.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rfp.yaml
var defaultCatalog []byte

var ErrQuestionNotFound = errors.New("question not found")

type Question struct {
	ID           string `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	FullQuestion string `yaml:"fullQuestion" json:"fullQuestion"`
}

type Section struct {
	ID        int        `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Catalog is immutable after construction.
type Catalog struct {
	Title    string
	sections []Section
	index    map[string]Question
}

type catalogFile struct {
	Title    string    `yaml:"title"`
	Sections []Section `yaml:"sections"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(file.Title, file.Sections)
}

// New validates sections and builds the question index. Section ids and
// question ids must be unique; question ids must be non-blank.
func New(title string, sections []Section) (*Catalog, error) {
	seenSections := make(map[int]bool, len(sections))
	index := make(map[string]Question)
	for _, section := range sections {
		if seenSections[section.ID] {
			return nil, fmt.Errorf("duplicate section id %d", section.ID)
		}
		seenSections[section.ID] = true
		for _, q := range section.Questions {
			if strings.TrimSpace(q.ID) == "" {
				return nil, fmt.Errorf("section %d: question with blank id", section.ID)
			}
			if _, dup := index[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			index[q.ID] = q
		}
	}
	return &Catalog{Title: strings.TrimSpace(title), sections: sections, index: index}, nil
}

// Sections returns a copy of the ordered sections.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		questions := make([]Question, len(s.Questions))
		copy(questions, s.Questions)
		out[i] = Section{ID: s.ID, Title: s.Title, Questions: questions}
	}
	return out
}

func (c *Catalog) Question(id string) (Question, error) {
	q, ok := c.index[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return q, nil
}

func (c *Catalog) HasQuestion(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) QuestionCount() int {
	return len(c.index)
}
