package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if c.Title != "Enterprise Cloud Solutions RFP" {
		t.Errorf("Title = %q", c.Title)
	}
	sections := c.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].ID != 1 || sections[1].ID != 2 {
		t.Errorf("section order = %d, %d", sections[0].ID, sections[1].ID)
	}
	if c.QuestionCount() != 8 {
		t.Errorf("QuestionCount() = %d, want 8", c.QuestionCount())
	}
	q, err := c.Question("q2-3")
	if err != nil {
		t.Fatalf("Question(q2-3) error = %v", err)
	}
	if q.Title != "Q 2.3 - API Integration" {
		t.Errorf("q2-3 title = %q", q.Title)
	}
}

func TestQuestionNotFound(t *testing.T) {
	c, _ := Default()
	if c.HasQuestion("q9-9") {
		t.Error("HasQuestion(q9-9) = true")
	}
	if _, err := c.Question("q9-9"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestSectionsReturnsCopy(t *testing.T) {
	c, _ := Default()
	sections := c.Sections()
	sections[0].Questions[0].Title = "mutated"
	if c.Sections()[0].Questions[0].Title == "mutated" {
		t.Error("Sections() leaked internal slice")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
	}{
		{
			name:     "duplicate section",
			sections: []Section{{ID: 1}, {ID: 1}},
		},
		{
			name: "duplicate question",
			sections: []Section{
				{ID: 1, Questions: []Question{{ID: "a"}}},
				{ID: 2, Questions: []Question{{ID: "a"}}},
			},
		},
		{
			name:     "blank question id",
			sections: []Section{{ID: 1, Questions: []Question{{ID: "  "}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("x", tt.sections); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := `title: Custom
sections:
  - id: 7
    title: Only
    questions: []
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Title != "Custom" || len(c.Sections()) != 1 || c.QuestionCount() != 0 {
		t.Errorf("unexpected catalog: %+v", c.Sections())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("sections: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
