package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/castlehq/checkmate/internal/models"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/storage"
	"github.com/castlehq/checkmate/internal/utils"
)

// ParseQueue hands a resume off to the asynchronous enrichment job.
type ParseQueue interface {
	Enqueue(ctx context.Context, resumeID uint) error
}

type ResumeService interface {
	Upload(ctx context.Context, userID uint, fileName, mimeType, objectName string, r io.Reader) (*models.Resume, error)
	Get(ctx context.Context, id, actorID uint) (*models.Resume, error)
	ListMine(ctx context.Context, userID uint) ([]models.Resume, error)
	// ApplyParsed writes the enrichment exactly once; the first writer wins.
	ApplyParsed(ctx context.Context, id uint, parsed *models.ParsedResume) (bool, error)
}

type resumeService struct {
	repo     pgrepo.ResumeRepository
	uploader storage.Uploader
	queue    ParseQueue
	log      *logrus.Logger
}

func NewResumeService(repo pgrepo.ResumeRepository, uploader storage.Uploader, queue ParseQueue, log *logrus.Logger) ResumeService {
	if log == nil {
		log = logrus.New()
	}
	return &resumeService{repo: repo, uploader: uploader, queue: queue, log: log}
}

func (s *resumeService) Upload(ctx context.Context, userID uint, fileName, mimeType, objectName string, r io.Reader) (*models.Resume, error) {
	const op = "ResumeService.Upload"

	if userID == 0 || objectName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and object_name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	row, err := s.repo.Create(ctx, &models.Resume{
		UserID:     userID,
		FileName:   fileName,
		FilePath:   storedPath,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume metadata", err)
	}

	// The upload stands even if the enrichment job cannot be queued; the
	// resume simply stays unparsed.
	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, row.ID); err != nil {
			s.log.WithError(err).WithField("resume_id", row.ID).Warn("failed to enqueue parse job")
		}
	}

	return row, nil
}

func (s *resumeService) Get(ctx context.Context, id, actorID uint) (*models.Resume, error) {
	const op = "ResumeService.Get"

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get resume", err)
	}
	if res.UserID != actorID {
		return nil, utils.E(utils.CodeForbidden, op, "resume belongs to another user", nil)
	}
	return res, nil
}

func (s *resumeService) ListMine(ctx context.Context, userID uint) ([]models.Resume, error) {
	const op = "ResumeService.ListMine"

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list resumes", err)
	}
	return rows, nil
}

func (s *resumeService) ApplyParsed(ctx context.Context, id uint, parsed *models.ParsedResume) (bool, error) {
	const op = "ResumeService.ApplyParsed"

	if parsed == nil {
		return false, utils.E(utils.CodeInvalidArgument, op, "parsed content is required", nil)
	}

	blob, err := json.Marshal(parsed)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to serialize parsed content", err)
	}

	applied, err := s.repo.ApplyParsed(ctx, id, datatypes.JSON(blob), pq.StringArray(parsed.Skills))
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to store parsed content", err)
	}
	return applied, nil
}
