package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QRTokenModel struct {
	QRTokenID        uuid.UUID `gorm:"type:uuid;primaryKey;column:qr_token_id" json:"qr_token_id"`
	QRTokenSessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_qr_tokens_session_active,priority:1;column:qr_token_session_id" json:"qr_token_session_id"`

	// Kode opaque (session prefix + timestamp + random); unik & tidak bisa ditebak
	QRTokenCode string `gorm:"type:varchar(128);not null;uniqueIndex:uq_qr_tokens_code;column:qr_token_code" json:"-"`

	QRTokenExpiresAt time.Time `gorm:"not null;column:qr_token_expires_at" json:"qr_token_expires_at"`
	QRTokenIsActive  bool      `gorm:"not null;default:true;index:idx_qr_tokens_session_active,priority:2;column:qr_token_is_active" json:"qr_token_is_active"`

	QRTokenCreatedAt time.Time `gorm:"column:qr_token_created_at;autoCreateTime" json:"qr_token_created_at"`
}

func (QRTokenModel) TableName() string {
	return "qr_tokens"
}

func (m *QRTokenModel) BeforeCreate(tx *gorm.DB) error {
	if m.QRTokenID == uuid.Nil {
		m.QRTokenID = uuid.New()
	}
	return nil
}
