package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"rfpwriter/api/internal/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"mm": func(v float64) string {
			return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "mm"
		},
	}

	templateContent, err := templateFS.ReadFile("templates/document.html")
	if err != nil {
		// Fallback to built-in template if file not found
		documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(string(templateContent)))
}

// TemplateData holds data for document template rendering
type TemplateData struct {
	Title    string
	Subtitle string
	Page     Dimensions
	Margins  Margins
	Sections []TemplateSection
}

type TemplateSection struct {
	Header    string
	Questions []TemplateQuestion
}

type TemplateQuestion struct {
	Title        string
	FullQuestion string
	Blocks       []TemplateBlock
}

// TemplateBlock is one answer block. Kind is "paragraph", "list" or "heading".
type TemplateBlock struct {
	Kind   string
	Level  int
	Marker string
	Text   string
	Runs   []TemplateRun
}

type TemplateRun struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Break     bool
}

func templateData(doc *document, settings PageSettings) TemplateData {
	data := TemplateData{
		Title:    doc.title,
		Subtitle: subtitleText,
		Page:     settings.Dimensions(),
		Margins:  settings.Margins,
	}
	for _, section := range doc.sections {
		ts := TemplateSection{Header: section.header()}
		for _, q := range section.questions {
			tq := TemplateQuestion{Title: q.title, FullQuestion: q.fullQuestion}
			for _, block := range q.blocks {
				tq.Blocks = append(tq.Blocks, templateBlock(block))
			}
			ts.Questions = append(ts.Questions, tq)
		}
		data.Sections = append(data.Sections, ts)
	}
	return data
}

func templateBlock(block richtext.Block) TemplateBlock {
	switch b := block.(type) {
	case richtext.ListItem:
		return TemplateBlock{Kind: "list", Marker: b.Marker(), Text: b.Text}
	case richtext.Heading:
		return TemplateBlock{Kind: "heading", Level: b.Level, Text: b.Text}
	case richtext.Paragraph:
		tb := TemplateBlock{Kind: "paragraph"}
		for _, r := range b.Runs {
			tb.Runs = append(tb.Runs, TemplateRun{
				Text:      r.Text,
				Bold:      r.Bold,
				Italic:    r.Italic,
				Underline: r.Underline,
				Break:     r.Break,
			})
		}
		return tb
	default:
		return TemplateBlock{Kind: "paragraph"}
	}
}

// RenderDocumentHTML renders the document template with provided data
func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Subtitle}}</p>
  {{range .Sections}}
  <h2>{{.Header}}</h2>
  {{range .Questions}}
  <h3>{{.Title}}</h3>
  <p>{{.FullQuestion}}</p>
  {{range .Blocks}}<p>{{if .Marker}}{{.Marker}} {{end}}{{.Text}}{{range .Runs}}{{if .Break}}<br>{{else}}{{.Text}}{{end}}{{end}}</p>{{else}}<p><em>No answer provided yet</em></p>{{end}}
  {{end}}
  {{end}}
</body>
</html>`
