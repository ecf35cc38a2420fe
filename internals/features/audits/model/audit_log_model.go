package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Action tag untuk fraud signal & perubahan state penting
const (
	AuditAttendanceMarked            = "attendance_marked"
	AuditAttendanceApproved          = "attendance_approved"
	AuditAttendanceRejected          = "attendance_rejected"
	AuditAttendanceOverridden        = "attendance_overridden"
	AuditAttendanceDeleted           = "attendance_deleted"
	AuditFaceEnrolled                = "face_enrolled"
	AuditFaceReEnrolled              = "face_re_enrolled"
	AuditQRTokenRotated              = "qr_token_rotated"
	AuditFraudDuplicateAttendance    = "fraud_attempt_duplicate_attendance"
	AuditFraudFaceMismatch           = "fraud_attempt_face_mismatch"
	AuditFraudLocationSpoofing       = "fraud_attempt_location_spoofing"
	AuditFraudInvalidQRToken         = "fraud_attempt_invalid_qr_token"
	AuditBiometricDecryptionFailure  = "biometric_decryption_failure"
)

// Append-only, system-wide event log untuk forensik.
type AuditLogModel struct {
	AuditLogID      uuid.UUID  `gorm:"type:uuid;primaryKey;column:audit_log_id" json:"audit_log_id"`
	AuditLogActorID *uuid.UUID `gorm:"type:uuid;column:audit_log_actor_id" json:"audit_log_actor_id,omitempty"`

	AuditLogAction string `gorm:"type:varchar(64);not null;index:idx_audit_logs_action;column:audit_log_action" json:"audit_log_action"`

	AuditLogSubjectType *string    `gorm:"type:varchar(40);column:audit_log_subject_type" json:"audit_log_subject_type,omitempty"`
	AuditLogSubjectID   *uuid.UUID `gorm:"type:uuid;column:audit_log_subject_id" json:"audit_log_subject_id,omitempty"`

	// Snapshot JSONB sebelum/sesudah (nullable)
	AuditLogOldValues datatypes.JSON `gorm:"column:audit_log_old_values" json:"audit_log_old_values,omitempty"`
	AuditLogNewValues datatypes.JSON `gorm:"column:audit_log_new_values" json:"audit_log_new_values,omitempty"`

	AuditLogIPAddress string  `gorm:"type:varchar(64);column:audit_log_ip_address" json:"audit_log_ip_address"`
	AuditLogUserAgent string  `gorm:"type:text;column:audit_log_user_agent" json:"audit_log_user_agent"`
	AuditLogNotes     *string `gorm:"type:text;column:audit_log_notes" json:"audit_log_notes,omitempty"`

	AuditLogCreatedAt time.Time `gorm:"column:audit_log_created_at;autoCreateTime" json:"audit_log_created_at"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

func (m *AuditLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.AuditLogID == uuid.Nil {
		m.AuditLogID = uuid.New()
	}
	return nil
}
