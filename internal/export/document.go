package export

import (
	"fmt"

	"rfpwriter/api/internal/richtext"
)

const (
	subtitleText       = "Response Document"
	noQuestionsText    = "No questions in this section"
	noAnswerText       = "No answer provided yet"
	sectionHeaderTitle = "Section %d: %s"
)

// document is the renderer-neutral view of one export: catalog order,
// answers already converted to blocks.
type document struct {
	title    string
	sections []documentSection
}

type documentSection struct {
	id        int
	title     string
	questions []documentQuestion
}

type documentQuestion struct {
	id           string
	title        string
	fullQuestion string
	// blocks is empty when the question has no answer.
	blocks []richtext.Block
	status string
}

func (s documentSection) header() string {
	return fmt.Sprintf(sectionHeaderTitle, s.id, s.title)
}

func (q documentQuestion) answered() bool {
	return len(q.blocks) > 0
}

func buildDocument(title string, req Request) (*document, error) {
	answers := req.Answers
	if answers == nil {
		answers = noAnswers{}
	}
	statuses, _ := answers.(StatusLookup)

	doc := &document{title: title, sections: make([]documentSection, 0, len(req.Sections))}
	for _, section := range req.Sections {
		ds := documentSection{id: section.ID, title: section.Title}
		for _, question := range section.Questions {
			blocks, err := richtext.Convert(answers.Answer(question.ID))
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", question.ID, err)
			}
			dq := documentQuestion{
				id:           question.ID,
				title:        question.Title,
				fullQuestion: question.FullQuestion,
				blocks:       blocks,
			}
			if statuses != nil {
				dq.status = statuses.StatusOf(question.ID)
			}
			ds.questions = append(ds.questions, dq)
		}
		doc.sections = append(doc.sections, ds)
	}
	return doc, nil
}
