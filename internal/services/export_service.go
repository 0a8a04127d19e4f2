package services

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/castlehq/checkmate/internal/export"
	"github.com/castlehq/checkmate/internal/models"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/utils"
)

const (
	NoInterviewsMessage = "No interviews found matching the criteria"
	NoMessagesMessage   = "No messages found for this interview"
)

// ExportResult carries either the written file's path or a human-readable
// "nothing to export" message; the empty case is a success, not an error.
type ExportResult struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
}

type ExportService interface {
	ExportInterviews(ctx context.Context, f pgrepo.InterviewFilter) (*ExportResult, error)
	ExportMessages(ctx context.Context, interviewID, actorID uint) (*ExportResult, error)
	ExportAll(ctx context.Context) (*ExportResult, error)
}

type exportService struct {
	users      pgrepo.UserRepository
	resumes    pgrepo.ResumeRepository
	interviews pgrepo.InterviewRepository
	messages   pgrepo.MessageRepository
	dir        string
}

func NewExportService(
	users pgrepo.UserRepository,
	resumes pgrepo.ResumeRepository,
	interviews pgrepo.InterviewRepository,
	messages pgrepo.MessageRepository,
	dir string,
) ExportService {
	return &exportService{
		users:      users,
		resumes:    resumes,
		interviews: interviews,
		messages:   messages,
		dir:        dir,
	}
}

func (s *exportService) ExportInterviews(ctx context.Context, f pgrepo.InterviewFilter) (*ExportResult, error) {
	const op = "ExportService.ExportInterviews"

	rows, err := s.interviews.ListFiltered(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query interviews", err)
	}
	if len(rows) == 0 {
		return &ExportResult{Message: NoInterviewsMessage}, nil
	}

	records := make([]export.Record, 0, len(rows))
	for _, iv := range rows {
		records = append(records, interviewRecord(iv))
	}

	path := export.FileName(s.dir, "interviews", "csv", time.Now())
	if err := s.write(path, records); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to write export file", err)
	}
	return &ExportResult{Path: path, Count: len(rows)}, nil
}

func (s *exportService) ExportMessages(ctx context.Context, interviewID, actorID uint) (*ExportResult, error) {
	const op = "ExportService.ExportMessages"

	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	if iv.UserID != actorID {
		return nil, utils.E(utils.CodeForbidden, op, "interview belongs to another user", nil)
	}

	rows, err := s.messages.ListByInterview(ctx, iv.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query messages", err)
	}
	if len(rows) == 0 {
		return &ExportResult{Message: NoMessagesMessage}, nil
	}

	records := make([]export.Record, 0, len(rows))
	for _, m := range rows {
		records = append(records, messageRecord(m))
	}

	path := export.FileName(s.dir, "messages", "csv", time.Now())
	if err := s.write(path, records); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to write export file", err)
	}
	return &ExportResult{Path: path, Count: len(rows)}, nil
}

// fullExport is the envelope of the full-dataset snapshot.
type fullExport struct {
	ExportedAt time.Time                 `json:"exported_at"`
	Users      []models.User             `json:"users"`
	Resumes    []models.Resume           `json:"resumes"`
	Interviews []models.Interview        `json:"interviews"`
	Messages   []models.InterviewMessage `json:"messages"`
}

func (s *exportService) ExportAll(ctx context.Context) (*ExportResult, error) {
	const op = "ExportService.ExportAll"

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query users", err)
	}
	resumes, err := s.resumes.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query resumes", err)
	}
	interviews, err := s.interviews.ListFiltered(ctx, pgrepo.InterviewFilter{})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query interviews", err)
	}
	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to query messages", err)
	}

	env := fullExport{
		ExportedAt: time.Now().UTC(),
		Users:      users,
		Resumes:    resumes,
		Interviews: interviews,
		Messages:   messages,
	}

	path := export.FileName(s.dir, "full_export", "json", env.ExportedAt)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create export dir", err)
	}
	if err := export.WriteJSON(path, env); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to write export file", err)
	}

	return &ExportResult{Path: path, Count: len(users) + len(resumes) + len(interviews) + len(messages)}, nil
}

func (s *exportService) write(path string, records []export.Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return export.WriteDelimited(path, records)
}

func interviewRecord(iv models.Interview) export.Record {
	return export.Record{
		{Name: "id", Value: iv.ID},
		{Name: "user_id", Value: iv.UserID},
		{Name: "resume_id", Value: iv.ResumeID},
		{Name: "role", Value: iv.Role},
		{Name: "level", Value: iv.Level},
		{Name: "persona", Value: iv.Persona},
		{Name: "status", Value: iv.Status},
		{Name: "started_at", Value: iv.StartedAt},
		{Name: "ended_at", Value: iv.EndedAt},
	}
}

func messageRecord(m models.InterviewMessage) export.Record {
	return export.Record{
		{Name: "id", Value: m.ID},
		{Name: "interview_id", Value: m.InterviewID},
		{Name: "sender", Value: m.Sender},
		{Name: "content", Value: m.Content},
		{Name: "sent_at", Value: m.SentAt},
	}
}
