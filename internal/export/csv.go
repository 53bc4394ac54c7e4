package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"rfpwriter/api/internal/richtext"
)

var csvHeader = []string{"Section", "Question ID", "Title", "Question", "Answer", "Status"}

// renderCSV writes one row per question in catalog order. Answers are the
// plain text of their blocks.
func renderCSV(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, section := range doc.sections {
		for _, q := range section.questions {
			status := q.status
			if status == "" {
				status = "empty"
			}
			row := []string{
				strconv.Itoa(section.id),
				q.id,
				q.title,
				q.fullQuestion,
				richtext.PlainText(q.blocks),
				status,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
