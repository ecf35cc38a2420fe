package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendancePresent  AttendanceStatus = "present"
	AttendanceLate     AttendanceStatus = "late"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceRejected AttendanceStatus = "rejected"
)

// CountsTowardSession: status yang menambah session_current_count.
func (s AttendanceStatus) CountsTowardSession() bool {
	return s == AttendancePresent || s == AttendanceLate
}

type AttendanceEntryType string

const (
	AttendanceEntry AttendanceEntryType = "entry"
	AttendanceExit  AttendanceEntryType = "exit"
)

type AttendanceModel struct {
	AttendanceID uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_id" json:"attendance_id"`

	// Unique (user, session): penentu akhir duplicate check, WAJIB ada di storage
	AttendanceUserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendances_user_session,priority:1;column:attendance_user_id" json:"attendance_user_id"`
	AttendanceSessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendances_user_session,priority:2;index:idx_attendances_session_status,priority:1;column:attendance_session_id" json:"attendance_session_id"`

	AttendanceQRTokenID *uuid.UUID `gorm:"type:uuid;column:attendance_qr_token_id" json:"attendance_qr_token_id,omitempty"`

	AttendanceVerifiedAt time.Time `gorm:"not null;column:attendance_verified_at" json:"attendance_verified_at"`

	// 🧬 Bukti biometrik
	AttendanceFaceMatchScore float64 `gorm:"not null;default:0;column:attendance_face_match_score" json:"attendance_face_match_score"`
	AttendanceFaceMatch      bool    `gorm:"not null;default:false;column:attendance_face_match" json:"attendance_face_match"`

	// 📍 Bukti lokasi (advisory, bukan hard gate)
	AttendanceGPSValid          bool     `gorm:"not null;default:false;column:attendance_gps_valid" json:"attendance_gps_valid"`
	AttendanceLatitude          *float64 `gorm:"column:attendance_latitude" json:"attendance_latitude,omitempty"`
	AttendanceLongitude         *float64 `gorm:"column:attendance_longitude" json:"attendance_longitude,omitempty"`
	AttendanceDistanceFromVenue *float64 `gorm:"column:attendance_distance_from_venue" json:"attendance_distance_from_venue,omitempty"`

	// 🌐 Metadata perangkat
	AttendanceIPAddress string `gorm:"type:varchar(64);column:attendance_ip_address" json:"attendance_ip_address"`
	AttendanceUserAgent string `gorm:"type:text;column:attendance_user_agent" json:"attendance_user_agent"`

	// Kombinasi bukti yang benar-benar dipakai, mis. "qr_face_gps"
	AttendanceVerificationMethod string `gorm:"type:varchar(40);not null;column:attendance_verification_method" json:"attendance_verification_method"`

	AttendanceStatus    AttendanceStatus    `gorm:"type:varchar(20);not null;default:pending;index:idx_attendances_session_status,priority:2;column:attendance_status" json:"attendance_status"`
	AttendanceEntryType AttendanceEntryType `gorm:"type:varchar(10);not null;default:entry;column:attendance_entry_type" json:"attendance_entry_type"`

	// ✅ Diisi HANYA oleh approval workflow
	AttendanceApprovedBy      *uuid.UUID `gorm:"type:uuid;column:attendance_approved_by" json:"attendance_approved_by,omitempty"`
	AttendanceApprovedAt      *time.Time `gorm:"column:attendance_approved_at" json:"attendance_approved_at,omitempty"`
	AttendanceAdminNotes      *string    `gorm:"type:text;column:attendance_admin_notes" json:"attendance_admin_notes,omitempty"`
	AttendanceRejectionReason *string    `gorm:"type:text;column:attendance_rejection_reason" json:"attendance_rejection_reason,omitempty"`

	AttendanceCreatedAt time.Time  `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
	AttendanceUpdatedAt *time.Time `gorm:"column:attendance_updated_at;autoUpdateTime" json:"attendance_updated_at,omitempty"`
}

func (AttendanceModel) TableName() string {
	return "attendances"
}

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	return nil
}
