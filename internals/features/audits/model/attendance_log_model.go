package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceLogAction string

const (
	AttendanceLogCreated  AttendanceLogAction = "created"
	AttendanceLogApproved AttendanceLogAction = "approved"
	AttendanceLogRejected AttendanceLogAction = "rejected"
	AttendanceLogOverride AttendanceLogAction = "override"
	AttendanceLogDeleted  AttendanceLogAction = "deleted"
)

// Append-only trail per attendance record. Tidak pernah di-update/di-delete.
type AttendanceLogModel struct {
	AttendanceLogID           uuid.UUID  `gorm:"type:uuid;primaryKey;column:attendance_log_id" json:"attendance_log_id"`
	AttendanceLogAttendanceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_attendance_logs_attendance;column:attendance_log_attendance_id" json:"attendance_log_attendance_id"`
	AttendanceLogActorID      *uuid.UUID `gorm:"type:uuid;column:attendance_log_actor_id" json:"attendance_log_actor_id,omitempty"`

	AttendanceLogAction    AttendanceLogAction `gorm:"type:varchar(20);not null;column:attendance_log_action" json:"attendance_log_action"`
	AttendanceLogOldStatus *string             `gorm:"type:varchar(20);column:attendance_log_old_status" json:"attendance_log_old_status,omitempty"`
	AttendanceLogNewStatus *string             `gorm:"type:varchar(20);column:attendance_log_new_status" json:"attendance_log_new_status,omitempty"`

	AttendanceLogNotes     *string `gorm:"type:text;column:attendance_log_notes" json:"attendance_log_notes,omitempty"`
	AttendanceLogIPAddress string  `gorm:"type:varchar(64);column:attendance_log_ip_address" json:"attendance_log_ip_address"`
	AttendanceLogUserAgent string  `gorm:"type:text;column:attendance_log_user_agent" json:"attendance_log_user_agent"`

	AttendanceLogCreatedAt time.Time `gorm:"column:attendance_log_created_at;autoCreateTime" json:"attendance_log_created_at"`
}

func (AttendanceLogModel) TableName() string {
	return "attendance_logs"
}

func (m *AttendanceLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceLogID == uuid.Nil {
		m.AttendanceLogID = uuid.New()
	}
	return nil
}
