package driver

import "time"

type Driver struct {
	ID                    int64      `gorm:"primaryKey"`
	FirstName             string     `gorm:"column:first_name;not null"`
	LastName              string     `gorm:"column:last_name"`
	Email                 string     `gorm:"column:email;uniqueIndex"`
	Phone                 string     `gorm:"column:phone"`
	DateOfBirth           *time.Time `gorm:"column:date_of_birth"`
	Address               string     `gorm:"column:address"`
	LicenseNumber         string     `gorm:"column:license_number"`
	LicenseExpiry         *time.Time `gorm:"column:license_expiry"`
	ProfilePhotoURL       string     `gorm:"column:profile_photo_url"`
	EmergencyContactPhone string     `gorm:"column:emergency_contact_phone"`

	KycStatus          string     `gorm:"column:kyc_status;not null;default:not_started"`
	KycStep            int        `gorm:"column:kyc_step;not null;default:0"`
	KycStep1At         *time.Time `gorm:"column:kyc_step_1_completed_at"`
	KycStep2At         *time.Time `gorm:"column:kyc_step_2_completed_at"`
	KycStep3At         *time.Time `gorm:"column:kyc_step_3_completed_at"`
	KycRetryCount      int        `gorm:"column:kyc_retry_count;not null;default:0"`
	KycRejectionReason *string    `gorm:"column:kyc_rejection_reason"`
	KycSubmittedAt     *time.Time `gorm:"column:kyc_submitted_at"`
	KycReviewedAt      *time.Time `gorm:"column:kyc_reviewed_at"`
	KycReviewedBy      *int64     `gorm:"column:kyc_reviewed_by"`
	KycCompletedAt     *time.Time `gorm:"column:kyc_completed_at"`
	VerificationStatus string     `gorm:"column:verification_status;not null;default:pending"`
	KycVersion         int64      `gorm:"column:kyc_version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type DriverDocument struct {
	ID                 int64      `gorm:"primaryKey"`
	DriverID           int64      `gorm:"column:driver_id;not null;index"`
	DocumentType       string     `gorm:"column:document_type;not null"`
	FileURL            string     `gorm:"column:file_url"`
	VerificationStatus string     `gorm:"column:verification_status;not null;default:pending"`
	UploadedAt         time.Time  `gorm:"column:uploaded_at;not null"`
	VerifiedAt         *time.Time `gorm:"column:verified_at"`
	VerifiedBy         *int64     `gorm:"column:verified_by"`
}

type KycAuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	DriverID   int64     `gorm:"column:driver_id;not null;index"`
	Action     string    `gorm:"column:action;not null"`
	ActorID    *int64    `gorm:"column:actor_id"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	Notes      string    `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
