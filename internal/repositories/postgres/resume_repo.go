package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/utils"
)

type ResumeRepository interface {
	Create(ctx context.Context, res *models.Resume) (*models.Resume, error)
	GetByID(ctx context.Context, id uint) (*models.Resume, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Resume, error)
	// ApplyParsed sets parsed_content exactly once; a second apply is a no-op
	// and reports applied=false.
	ApplyParsed(ctx context.Context, id uint, parsed datatypes.JSON, skills pq.StringArray) (applied bool, err error)
	List(ctx context.Context) ([]models.Resume, error)
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Create(ctx context.Context, res *models.Resume) (*models.Resume, error) {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return nil, err
	}
	var out models.Resume
	if err := r.db.WithContext(ctx).Take(&out, res.ID).Error; err != nil {
		return nil, fmt.Errorf("re-fetch resume %d after insert: %w", res.ID, err)
	}
	out.InflateParsed()
	return &out, nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id uint) (*models.Resume, error) {
	var res models.Resume
	err := r.db.WithContext(ctx).Take(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res.InflateParsed()
	return &res, nil
}

func (r *resumeRepo) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	var rows []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].InflateParsed()
	}
	return rows, nil
}

func (r *resumeRepo) ApplyParsed(ctx context.Context, id uint, parsed datatypes.JSON, skills pq.StringArray) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("id = ? AND parsed_content IS NULL", id).
		Updates(map[string]any{
			"parsed_content": parsed,
			"skills":         skills,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *resumeRepo) List(ctx context.Context) ([]models.Resume, error) {
	var rows []models.Resume
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].InflateParsed()
	}
	return rows, nil
}
