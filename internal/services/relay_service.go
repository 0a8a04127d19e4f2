package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/prompts"
	"github.com/castlehq/checkmate/internal/providers/llm"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/utils"
)

// FallbackReply is persisted whenever the completion service fails or
// returns nothing; the conversation never stalls on the external call.
const FallbackReply = "My apologies - I lost my train of thought for a moment. Let's keep going: could you expand a little on your last answer?"

// maxHistoryTurns bounds the prompt; older turns are dropped, newest kept.
const maxHistoryTurns = 40

type RelayService interface {
	// PostMessage appends the candidate turn, drives exactly one completion
	// call, appends the reply (or the fallback), and returns both rows.
	PostMessage(ctx context.Context, interviewID, actorID uint, content string) (userMsg, aiMsg *models.InterviewMessage, err error)
	ListMessages(ctx context.Context, interviewID, actorID uint) ([]models.InterviewMessage, error)
}

type relayService struct {
	interviews pgrepo.InterviewRepository
	messages   pgrepo.MessageRepository
	resumes    pgrepo.ResumeRepository
	provider   llm.Provider
	timeout    time.Duration
	log        *logrus.Logger
}

func NewRelayService(
	interviews pgrepo.InterviewRepository,
	messages pgrepo.MessageRepository,
	resumes pgrepo.ResumeRepository,
	provider llm.Provider,
	timeout time.Duration,
	log *logrus.Logger,
) RelayService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}
	return &relayService{
		interviews: interviews,
		messages:   messages,
		resumes:    resumes,
		provider:   provider,
		timeout:    timeout,
		log:        log,
	}
}

func (s *relayService) PostMessage(ctx context.Context, interviewID, actorID uint, content string) (*models.InterviewMessage, *models.InterviewMessage, error) {
	const op = "RelayService.PostMessage"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, utils.EV(op, "invalid message", []utils.FieldError{{Field: "content", Message: "is required"}})
	}

	iv, err := s.owned(ctx, op, interviewID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if iv.Terminal() {
		return nil, nil, utils.E(utils.CodeConflict, op, "interview is no longer in progress", nil)
	}

	// The candidate turn is durable before the external call; a crash from
	// here on leaves a user turn with no reply, never the reverse.
	userMsg, err := s.messages.Create(ctx, &models.InterviewMessage{
		InterviewID: iv.ID,
		Sender:      models.SenderUser,
		Content:     content,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to persist message", err)
	}

	history, err := s.messages.ListByInterview(ctx, iv.ID)
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}

	reply := s.generateReply(ctx, iv, history)

	aiMsg, err := s.messages.Create(ctx, &models.InterviewMessage{
		InterviewID: iv.ID,
		Sender:      models.SenderAI,
		Content:     reply,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to persist reply", err)
	}

	return userMsg, aiMsg, nil
}

func (s *relayService) ListMessages(ctx context.Context, interviewID, actorID uint) ([]models.InterviewMessage, error) {
	const op = "RelayService.ListMessages"

	iv, err := s.owned(ctx, op, interviewID, actorID)
	if err != nil {
		return nil, err
	}

	rows, err := s.messages.ListByInterview(ctx, iv.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

// generateReply drives the single completion call. Every failure path maps
// to the fallback reply instead of surfacing.
func (s *relayService) generateReply(ctx context.Context, iv *models.Interview, history []models.InterviewMessage) string {
	system := prompts.SystemInstruction(iv.Persona, iv.Role, iv.Level, s.resumeContext(ctx, iv))

	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Sender == models.SenderAI {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Message{Role: role, Content: m.Content})
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.Complete(cctx, system, turns)
	if err != nil || strings.TrimSpace(reply) == "" {
		s.log.WithError(err).WithField("interview_id", iv.ID).Warn("completion call failed, using fallback reply")
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

// resumeContext is best-effort: any failure simply omits the context.
func (s *relayService) resumeContext(ctx context.Context, iv *models.Interview) string {
	if iv.ResumeID == nil {
		return ""
	}
	res, err := s.resumes.GetByID(ctx, *iv.ResumeID)
	if err != nil || res.ParseState != models.ParseStateOK {
		return ""
	}
	return prompts.ResumeContext(res.Parsed)
}

func (s *relayService) owned(ctx context.Context, op string, id, actorID uint) (*models.Interview, error) {
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
