package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/utils"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogle(ctx context.Context, id uint, googleID, name, pictureURL string) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts and re-fetches by the generated id. A failed re-fetch
// signals a corrupted write path and is surfaced, never an empty return.
func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	var out models.User
	if err := r.db.WithContext(ctx).Take(&out, u.ID).Error; err != nil {
		return nil, fmt.Errorf("re-fetch user %d after insert: %w", u.ID, err)
	}
	return &out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Take(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *userRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getBy(ctx, "google_id = ?", googleID)
}

func (r *userRepo) getBy(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) LinkGoogle(ctx context.Context, id uint, googleID, name, pictureURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"google_id":   googleID,
			"name":        name,
			"picture_url": pictureURL,
		}).Error
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}
