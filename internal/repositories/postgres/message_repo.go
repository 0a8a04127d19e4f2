package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/castlehq/checkmate/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, m *models.InterviewMessage) (*models.InterviewMessage, error)
	// ListByInterview returns the total order for one interview: sent_at
	// ascending, id as the tie-break.
	ListByInterview(ctx context.Context, interviewID uint) ([]models.InterviewMessage, error)
	List(ctx context.Context) ([]models.InterviewMessage, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *models.InterviewMessage) (*models.InterviewMessage, error) {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	var out models.InterviewMessage
	if err := r.db.WithContext(ctx).Take(&out, m.ID).Error; err != nil {
		return nil, fmt.Errorf("re-fetch message %d after insert: %w", m.ID, err)
	}
	return &out, nil
}

func (r *messageRepo) ListByInterview(ctx context.Context, interviewID uint) ([]models.InterviewMessage, error) {
	var rows []models.InterviewMessage
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("sent_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *messageRepo) List(ctx context.Context) ([]models.InterviewMessage, error) {
	var rows []models.InterviewMessage
	err := r.db.WithContext(ctx).Order("interview_id ASC, sent_at ASC, id ASC").Find(&rows).Error
	return rows, err
}
