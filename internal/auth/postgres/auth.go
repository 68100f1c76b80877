package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/drivelink/backoffice/internal/auth"
	adminDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/admin"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var row adminDatamodel.AdminUser
	err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash", "is_active").
		Where("email = ?", email).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Credentials{
		AdminID:      row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, adminID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&adminDatamodel.AdminUser{}).
		Where("id = ?", adminID).
		UpdateColumn("last_login_at", at).Error
}
