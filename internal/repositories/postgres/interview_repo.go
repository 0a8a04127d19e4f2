package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/utils"
)

// InterviewFilter bounds an export query. Nil fields are not applied;
// Start/End are inclusive.
type InterviewFilter struct {
	UserID *uint
	Start  *time.Time
	End    *time.Time
}

type InterviewRepository interface {
	// CreateWithGreeting persists the interview and its seeded opening
	// message as one transaction; a failed seed rolls the interview back.
	CreateWithGreeting(ctx context.Context, iv *models.Interview, greeting *models.InterviewMessage) (*models.Interview, error)
	GetByID(ctx context.Context, id uint) (*models.Interview, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Interview, error)
	ListFiltered(ctx context.Context, f InterviewFilter) ([]models.Interview, error)
	// Finish moves an in_progress interview to a terminal status. Reports
	// applied=false when the row was no longer in_progress.
	Finish(ctx context.Context, id uint, status string, endedAt time.Time) (applied bool, err error)
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) CreateWithGreeting(ctx context.Context, iv *models.Interview, greeting *models.InterviewMessage) (*models.Interview, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(iv).Error; err != nil {
			return err
		}
		greeting.InterviewID = iv.ID
		return tx.Create(greeting).Error
	})
	if err != nil {
		return nil, err
	}

	var out models.Interview
	if err := r.db.WithContext(ctx).Take(&out, iv.ID).Error; err != nil {
		return nil, fmt.Errorf("re-fetch interview %d after insert: %w", iv.ID, err)
	}
	return &out, nil
}

func (r *interviewRepo) GetByID(ctx context.Context, id uint) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).Take(&iv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID uint) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) ListFiltered(ctx context.Context, f InterviewFilter) ([]models.Interview, error) {
	q := r.db.WithContext(ctx).Model(&models.Interview{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Start != nil {
		q = q.Where("started_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("started_at <= ?", *f.End)
	}

	var rows []models.Interview
	err := q.Order("started_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) Finish(ctx context.Context, id uint, status string, endedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ? AND status = ?", id, models.StatusInProgress).
		Updates(map[string]any{
			"status":   status,
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
