package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/prompts"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/utils"
)

type InterviewService interface {
	// Create persists the interview in_progress and seeds the opening
	// interviewer message in the same transaction.
	Create(ctx context.Context, ownerID uint, role, level, persona string, resumeID *uint) (*models.Interview, error)
	Get(ctx context.Context, id, actorID uint) (*models.Interview, error)
	List(ctx context.Context, ownerID uint) ([]models.Interview, error)
	// End completes an in_progress interview. Ending an already-completed
	// interview succeeds idempotently and returns it unchanged; ending a
	// cancelled one is a CONFLICT. The same outcome holds on every call.
	End(ctx context.Context, id, actorID uint) (*models.Interview, error)
	// Cancel moves in_progress to cancelled; any terminal state is CONFLICT.
	Cancel(ctx context.Context, id, actorID uint) (*models.Interview, error)
}

type interviewService struct {
	interviews pgrepo.InterviewRepository
	resumes    pgrepo.ResumeRepository
}

func NewInterviewService(interviews pgrepo.InterviewRepository, resumes pgrepo.ResumeRepository) InterviewService {
	return &interviewService{interviews: interviews, resumes: resumes}
}

func (s *interviewService) Create(ctx context.Context, ownerID uint, role, level, persona string, resumeID *uint) (*models.Interview, error) {
	const op = "InterviewService.Create"

	role = strings.TrimSpace(role)
	persona = strings.ToLower(strings.TrimSpace(persona))
	level = strings.ToLower(strings.TrimSpace(level))

	var details []utils.FieldError
	if role == "" {
		details = append(details, utils.FieldError{Field: "role", Message: "is required"})
	}
	if !prompts.Valid(persona) {
		details = append(details, utils.FieldError{Field: "persona", Message: "must be one of " + strings.Join(prompts.IDs(), ", ")})
	}
	if !models.ValidLevel(level) {
		details = append(details, utils.FieldError{Field: "level", Message: "must be junior, intermediate, or senior"})
	}
	if len(details) > 0 {
		return nil, utils.EV(op, "invalid interview data", details)
	}

	// Cross-owner resume references are rejected here, not by the schema.
	if resumeID != nil {
		res, err := s.resumes.GetByID(ctx, *resumeID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to resolve resume", err)
		}
		if res.UserID != ownerID {
			return nil, utils.E(utils.CodeForbidden, op, "resume belongs to another user", nil)
		}
	}

	now := time.Now().UTC()
	iv := &models.Interview{
		UserID:    ownerID,
		ResumeID:  resumeID,
		Role:      role,
		Level:     level,
		Persona:   persona,
		Status:    models.StatusInProgress,
		StartedAt: now,
	}
	greeting := &models.InterviewMessage{
		Sender:  models.SenderAI,
		Content: prompts.Greeting(persona, role),
		SentAt:  now,
	}

	out, err := s.interviews.CreateWithGreeting(ctx, iv, greeting)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}
	return out, nil
}

func (s *interviewService) Get(ctx context.Context, id, actorID uint) (*models.Interview, error) {
	const op = "InterviewService.Get"
	return s.owned(ctx, op, id, actorID)
}

func (s *interviewService) List(ctx context.Context, ownerID uint) ([]models.Interview, error) {
	const op = "InterviewService.List"

	rows, err := s.interviews.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return rows, nil
}

func (s *interviewService) End(ctx context.Context, id, actorID uint) (*models.Interview, error) {
	const op = "InterviewService.End"

	iv, err := s.owned(ctx, op, id, actorID)
	if err != nil {
		return nil, err
	}

	switch iv.Status {
	case models.StatusCompleted:
		return iv, nil
	case models.StatusCancelled:
		return nil, utils.E(utils.CodeConflict, op, "interview was cancelled", nil)
	}

	return s.finish(ctx, op, iv, models.StatusCompleted)
}

func (s *interviewService) Cancel(ctx context.Context, id, actorID uint) (*models.Interview, error) {
	const op = "InterviewService.Cancel"

	iv, err := s.owned(ctx, op, id, actorID)
	if err != nil {
		return nil, err
	}
	if iv.Terminal() {
		return nil, utils.E(utils.CodeConflict, op, "interview already "+iv.Status, nil)
	}

	return s.finish(ctx, op, iv, models.StatusCancelled)
}

// owned is the single ownership-check primitive for interviews; route
// handlers never re-implement it.
func (s *interviewService) owned(ctx context.Context, op string, id, actorID uint) (*models.Interview, error) {
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	if iv.UserID != actorID {
		return nil, utils.E(utils.CodeForbidden, op, "interview belongs to another user", nil)
	}
	return iv, nil
}

func (s *interviewService) finish(ctx context.Context, op string, iv *models.Interview, status string) (*models.Interview, error) {
	now := time.Now().UTC()
	applied, err := s.interviews.Finish(ctx, iv.ID, status, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update interview", err)
	}
	if !applied {
		// lost a race against another terminal transition
		return nil, utils.E(utils.CodeConflict, op, "interview is no longer in progress", nil)
	}

	iv.Status = status
	iv.EndedAt = &now
	return iv, nil
}
