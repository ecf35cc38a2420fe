package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FaceEnrollmentModel struct {
	FaceEnrollmentID     uuid.UUID `gorm:"type:uuid;primaryKey;column:face_enrollment_id" json:"face_enrollment_id"`
	// Partial unique index = penjaga di storage untuk invariant satu enrollment
	// aktif per user; pre-check di service hanya untuk pesan error yang ramah.
	FaceEnrollmentUserID uuid.UUID `gorm:"type:uuid;not null;index:idx_face_enrollments_user_active,priority:1;uniqueIndex:uq_face_enrollments_one_active,where:face_enrollment_requires_reverification = false;column:face_enrollment_user_id" json:"face_enrollment_user_id"`

	// 🔐 Descriptor terenkripsi (AES-GCM, base64). Plaintext TIDAK PERNAH disimpan/di-log.
	FaceEnrollmentDescriptorEncrypted string `gorm:"type:text;not null;column:face_enrollment_descriptor_encrypted" json:"-"`
	FaceEnrollmentEncryptionKeyID     int    `gorm:"not null;default:1;column:face_enrollment_encryption_key_id" json:"-"`

	FaceEnrollmentConfidenceThreshold float64 `gorm:"not null;default:0.7;column:face_enrollment_confidence_threshold" json:"face_enrollment_confidence_threshold"`

	// Statistik pemakaian: HANYA di-update kalau verifikasi sukses
	FaceEnrollmentVerificationCount int        `gorm:"not null;default:0;column:face_enrollment_verification_count" json:"face_enrollment_verification_count"`
	FaceEnrollmentLastVerifiedAt    *time.Time `gorm:"column:face_enrollment_last_verified_at" json:"face_enrollment_last_verified_at,omitempty"`

	// Re-enroll menandai enrollment lama, tidak menghapus (audit)
	FaceEnrollmentRequiresReverification bool `gorm:"not null;default:false;index:idx_face_enrollments_user_active,priority:2;column:face_enrollment_requires_reverification" json:"face_enrollment_requires_reverification"`

	FaceEnrollmentImageURL *string `gorm:"type:text;column:face_enrollment_image_url" json:"face_enrollment_image_url,omitempty"`

	FaceEnrollmentCreatedAt time.Time  `gorm:"column:face_enrollment_created_at;autoCreateTime" json:"face_enrollment_created_at"`
	FaceEnrollmentUpdatedAt *time.Time `gorm:"column:face_enrollment_updated_at;autoUpdateTime" json:"face_enrollment_updated_at,omitempty"`
}

func (FaceEnrollmentModel) TableName() string {
	return "face_enrollments"
}

func (m *FaceEnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.FaceEnrollmentID == uuid.Nil {
		m.FaceEnrollmentID = uuid.New()
	}
	return nil
}
