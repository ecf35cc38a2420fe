package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	UserName string    `gorm:"type:varchar(100);not null;column:user_name" json:"user_name"`
	UserRole string    `gorm:"type:varchar(30);not null;default:user;column:user_role" json:"user_role"`

	// Persetujuan penyimpanan data biometrik (wajib true sebelum enroll wajah)
	UserFaceConsent bool `gorm:"not null;default:false;column:user_face_consent" json:"user_face_consent"`

	// Lifecycle: aktif atau sudah dinonaktifkan (retired-at, bukan delete)
	UserIsActive  bool       `gorm:"not null;default:true;column:user_is_active" json:"user_is_active"`
	UserRetiredAt *time.Time `gorm:"column:user_retired_at" json:"user_retired_at,omitempty"`

	UserCreatedAt time.Time  `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt *time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at,omitempty"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}
