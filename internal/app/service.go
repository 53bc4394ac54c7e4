package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rfpwriter/api/internal/catalog"
	"rfpwriter/api/internal/config"
	"rfpwriter/api/internal/export"
	"rfpwriter/api/internal/logger"
	"rfpwriter/api/internal/session"
)

const (
	ProgressReady      = "Ready for Review"
	ProgressInProgress = "In Progress"
	ProgressNotStarted = "Not Started"
)

type exporter interface {
	Export(context.Context, export.Request) (*export.Result, error)
	Preview(export.Request) (string, error)
}

type AnswerView struct {
	QuestionID string         `json:"questionId"`
	HTML       string         `json:"html"`
	Status     session.Status `json:"status"`
}

type SectionProgress struct {
	SectionID int    `json:"sectionId"`
	Title     string `json:"title"`
	Saved     int    `json:"saved"`
	Total     int    `json:"total"`
}

type Progress struct {
	Total    int               `json:"total"`
	Saved    int               `json:"saved"`
	Editing  int               `json:"editing"`
	Label    string            `json:"label"`
	Sections []SectionProgress `json:"sections"`
}

// ExportInput is the client's export choice. PageSettings nil means defaults.
type ExportInput struct {
	Format       string               `json:"format"`
	PageSettings *export.PageSettings `json:"pageSettings"`
	Title        string               `json:"title"`
}

// ExportStatus mirrors the export button: disabled while exporting, and the
// last failure until the next attempt.
type ExportStatus struct {
	Exporting bool   `json:"exporting"`
	Error     string `json:"error,omitempty"`
}

type Service struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	sessions session.Store
	exporter exporter
	log      *logger.Logger

	exportMu sync.Mutex
	exports  map[string]ExportStatus
}

func New(cfg config.Config, cat *catalog.Catalog, sessions session.Store, exp exporter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cfg:      cfg,
		catalog:  cat,
		sessions: sessions,
		exporter: exp,
		log:      log,
		exports:  make(map[string]ExportStatus),
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

func (s *Service) Catalog() map[string]any {
	return map[string]any{
		"title":    s.documentTitle(),
		"sections": s.catalog.Sections(),
	}
}

func (s *Service) documentTitle() string {
	if s.cfg.DocumentTitle != "" {
		return s.cfg.DocumentTitle
	}
	if s.catalog.Title != "" {
		return s.catalog.Title
	}
	return config.DefaultDocumentTitle
}

func (s *Service) CreateSession(ctx context.Context) (string, error) {
	id, err := s.sessions.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.log.Info("session created", "session_id", id)
	return id, nil
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	s.exportMu.Lock()
	delete(s.exports, sessionID)
	s.exportMu.Unlock()
	return nil
}

func (s *Service) requireQuestion(questionID string) error {
	if !s.catalog.HasQuestion(questionID) {
		return questionNotFound(questionID)
	}
	return nil
}

func (s *Service) Answer(ctx context.Context, sessionID, questionID string) (AnswerView, error) {
	if err := s.requireQuestion(questionID); err != nil {
		return AnswerView{}, err
	}
	html, err := s.sessions.GetAnswer(ctx, sessionID, questionID)
	if err != nil {
		return AnswerView{}, err
	}
	status, err := s.sessions.GetStatus(ctx, sessionID, questionID)
	if err != nil {
		return AnswerView{}, err
	}
	return AnswerView{QuestionID: questionID, HTML: html, Status: status}, nil
}

// Answers lists every catalog question in order, answered or not.
func (s *Service) Answers(ctx context.Context, sessionID string) ([]AnswerView, error) {
	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	views := make([]AnswerView, 0, s.catalog.QuestionCount())
	for _, section := range s.catalog.Sections() {
		for _, q := range section.Questions {
			views = append(views, AnswerView{
				QuestionID: q.ID,
				HTML:       snap.Answer(q.ID),
				Status:     snap.Status(q.ID),
			})
		}
	}
	return views, nil
}

func (s *Service) UpdateAnswer(ctx context.Context, sessionID, questionID, html string) (session.Status, error) {
	if err := s.requireQuestion(questionID); err != nil {
		return session.StatusEmpty, err
	}
	return s.sessions.UpdateAnswer(ctx, sessionID, questionID, html)
}

func (s *Service) SaveAnswer(ctx context.Context, sessionID, questionID, html string) (session.Status, error) {
	if err := s.requireQuestion(questionID); err != nil {
		return session.StatusEmpty, err
	}
	status, err := s.sessions.SaveAnswer(ctx, sessionID, questionID, html)
	if err != nil {
		return status, err
	}
	s.log.Debug("answer saved", "session_id", sessionID, "question_id", questionID)
	return status, nil
}

func (s *Service) Progress(ctx context.Context, sessionID string) (Progress, error) {
	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}

	progress := Progress{Sections: []SectionProgress{}}
	for _, section := range s.catalog.Sections() {
		sp := SectionProgress{SectionID: section.ID, Title: section.Title, Total: len(section.Questions)}
		for _, q := range section.Questions {
			switch snap.Status(q.ID) {
			case session.StatusSaved:
				sp.Saved++
			case session.StatusEditing:
				progress.Editing++
			}
		}
		progress.Total += sp.Total
		progress.Saved += sp.Saved
		progress.Sections = append(progress.Sections, sp)
	}

	switch {
	case progress.Saved == progress.Total:
		progress.Label = ProgressReady
	case progress.Saved > 0:
		progress.Label = ProgressInProgress
	default:
		progress.Label = ProgressNotStarted
	}
	return progress, nil
}

func (s *Service) exportRequest(ctx context.Context, sessionID string, input ExportInput) (export.Request, error) {
	settings := export.DefaultPageSettings()
	if input.PageSettings != nil {
		settings = *input.PageSettings
	}
	if err := settings.Validate(); err != nil {
		return export.Request{}, validationError(err.Error())
	}

	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return export.Request{}, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = s.documentTitle()
	}
	return export.Request{
		Settings: settings,
		Title:    title,
		Sections: s.catalog.Sections(),
		Answers:  snap,
	}, nil
}

// Export renders the session's answers as they were when the export began.
// Only one export per session runs at a time.
func (s *Service) Export(ctx context.Context, sessionID string, input ExportInput) (*export.Result, error) {
	format, ok := export.ParseFormat(input.Format)
	if !ok {
		return nil, validationError("format must be 'pdf', 'docx' or 'csv'")
	}

	req, err := s.exportRequest(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}
	req.Format = format

	if err := s.beginExport(sessionID); err != nil {
		return nil, err
	}

	result, err := s.exporter.Export(ctx, req)
	s.finishExport(sessionID, err)
	if err != nil {
		s.log.Error("export failed", "session_id", sessionID, "format", format, "error", err)
		return nil, err
	}
	s.log.Info("export completed", "session_id", sessionID, "format", format, "filename", result.Filename, "bytes", len(result.Data))
	return result, nil
}

func (s *Service) Preview(ctx context.Context, sessionID string, input ExportInput) (string, error) {
	req, err := s.exportRequest(ctx, sessionID, input)
	if err != nil {
		return "", err
	}
	html, err := s.exporter.Preview(req)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return html, nil
}

func (s *Service) ExportStatus(ctx context.Context, sessionID string) (ExportStatus, error) {
	if _, err := s.sessions.Snapshot(ctx, sessionID); err != nil {
		return ExportStatus{}, err
	}
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	return s.exports[sessionID], nil
}

// beginExport clears the previous error and marks the session busy.
func (s *Service) beginExport(sessionID string) error {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	if s.exports[sessionID].Exporting {
		return exportInProgress(sessionID)
	}
	s.exports[sessionID] = ExportStatus{Exporting: true}
	return nil
}

func (s *Service) finishExport(sessionID string, err error) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	state := ExportStatus{}
	if err != nil {
		state.Error = exportErrorMessage(err)
	}
	s.exports[sessionID] = state
}

func exportErrorMessage(err error) string {
	if errors.Is(err, export.ErrChromeUnavailable) {
		return "PDF export is unavailable: " + export.ErrChromeUnavailable.Error()
	}
	return "Export failed. Please try again."
}
