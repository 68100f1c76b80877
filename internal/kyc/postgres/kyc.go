package postgres

import (
	"context"
	"errors"
	"time"

	driverDatamodel "github.com/drivelink/backoffice/internal/core/datamodel/driver"
	"github.com/drivelink/backoffice/internal/kyc"
	"gorm.io/gorm"
)

type KycRepository struct {
	db *gorm.DB
}

func NewKycRepository(db *gorm.DB) *KycRepository {
	return &KycRepository{db: db}
}

func (r *KycRepository) GetDriver(ctx context.Context, driverID int64) (*kyc.Driver, error) {
	var row driverDatamodel.Driver
	err := r.db.WithContext(ctx).Where("id = ?", driverID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kyc.ErrDriverNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

// SaveProgress writes the KYC columns guarded by kyc_version.
func (r *KycRepository) SaveProgress(ctx context.Context, p *kyc.Progress) error {
	result := r.db.WithContext(ctx).
		Model(&driverDatamodel.Driver{}).
		Where("id = ? AND kyc_version = ?", p.DriverID, p.Version).
		Updates(map[string]interface{}{
			"kyc_status":              string(p.Status),
			"kyc_step":                p.Step,
			"kyc_step_1_completed_at": p.StepCompletedAt[0],
			"kyc_step_2_completed_at": p.StepCompletedAt[1],
			"kyc_step_3_completed_at": p.StepCompletedAt[2],
			"kyc_retry_count":         p.RetryCount,
			"kyc_rejection_reason":    p.RejectionReason,
			"kyc_submitted_at":        p.SubmittedAt,
			"kyc_reviewed_at":         p.ReviewedAt,
			"kyc_reviewed_by":         p.ReviewedBy,
			"kyc_completed_at":        p.CompletedAt,
			"verification_status":     string(p.VerificationStatus),
			"kyc_version":             p.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&driverDatamodel.Driver{}).Where("id = ?", p.DriverID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return kyc.ErrDriverNotFound
		}
		return kyc.ErrConcurrentUpdate
	}
	p.Version++
	return nil
}

func (r *KycRepository) ListDocuments(ctx context.Context, driverID int64) ([]kyc.Document, error) {
	var rows []driverDatamodel.DriverDocument
	err := r.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("uploaded_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]kyc.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, kyc.Document{
			Type:               kyc.DocumentType(row.DocumentType),
			VerificationStatus: row.VerificationStatus,
			UploadedAt:         row.UploadedAt,
		})
	}
	return docs, nil
}

func (r *KycRepository) ListAuditEntries(ctx context.Context, driverID int64) ([]kyc.AuditEntry, error) {
	var rows []driverDatamodel.KycAuditLog
	err := r.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("created_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]kyc.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, kyc.AuditEntry{
			ID:         row.ID,
			DriverID:   row.DriverID,
			Action:     row.Action,
			ActorID:    row.ActorID,
			FromStatus: row.FromStatus,
			ToStatus:   row.ToStatus,
			Notes:      row.Notes,
			CreatedAt:  row.CreatedAt,
		})
	}
	return entries, nil
}

func (r *KycRepository) RecordAuditEntry(ctx context.Context, entry *kyc.AuditEntry) error {
	row := driverDatamodel.KycAuditLog{
		DriverID:   entry.DriverID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Notes:      entry.Notes,
		CreatedAt:  entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	entry.ID = row.ID
	return nil
}

func toDomain(row *driverDatamodel.Driver) *kyc.Driver {
	return &kyc.Driver{
		ID: row.ID,
		Profile: kyc.Profile{
			FirstName:             row.FirstName,
			LastName:              row.LastName,
			Email:                 row.Email,
			Phone:                 row.Phone,
			DateOfBirth:           row.DateOfBirth,
			Address:               row.Address,
			LicenseNumber:         row.LicenseNumber,
			LicenseExpiry:         row.LicenseExpiry,
			ProfilePhotoURL:       row.ProfilePhotoURL,
			EmergencyContactPhone: row.EmergencyContactPhone,
		},
		Progress: kyc.Progress{
			DriverID:           row.ID,
			Status:             kyc.Status(row.KycStatus),
			Step:               row.KycStep,
			StepCompletedAt:    [kyc.TotalSteps]*time.Time{row.KycStep1At, row.KycStep2At, row.KycStep3At},
			RetryCount:         row.KycRetryCount,
			RejectionReason:    row.KycRejectionReason,
			SubmittedAt:        row.KycSubmittedAt,
			ReviewedAt:         row.KycReviewedAt,
			ReviewedBy:         row.KycReviewedBy,
			CompletedAt:        row.KycCompletedAt,
			VerificationStatus: kyc.VerificationStatus(row.VerificationStatus),
			Version:            row.KycVersion,
		},
	}
}
