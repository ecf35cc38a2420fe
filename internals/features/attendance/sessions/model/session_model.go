package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

type SessionModel struct {
	SessionID             uuid.UUID `gorm:"type:uuid;primaryKey;column:session_id" json:"session_id"`
	SessionOrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_org_start,priority:1;column:session_organization_id" json:"session_organization_id"`
	SessionTitle          string    `gorm:"type:varchar(255);not null;column:session_title" json:"session_title"`

	// ⏰ Jendela waktu [start, end)
	SessionStartTime time.Time `gorm:"not null;index:idx_sessions_org_start,priority:2;column:session_start_time" json:"session_start_time"`
	SessionEndTime   time.Time `gorm:"not null;column:session_end_time" json:"session_end_time"`

	// 📍 Geofence venue
	SessionLatitude     float64 `gorm:"not null;column:session_latitude" json:"session_latitude"`
	SessionLongitude    float64 `gorm:"not null;column:session_longitude" json:"session_longitude"`
	SessionRadiusMeters float64 `gorm:"not null;default:100;column:session_radius_meters" json:"session_radius_meters"`

	// Kapasitas (nullable = tanpa batas); current_count hanya diubah via ekspresi SQL atomik
	SessionCapacity     *int `gorm:"column:session_capacity" json:"session_capacity,omitempty"`
	SessionCurrentCount int  `gorm:"not null;default:0;column:session_current_count" json:"session_current_count"`

	// Menit toleransi terlambat untuk klasifikasi present/late
	SessionLateThresholdMinutes int `gorm:"not null;default:15;column:session_late_threshold_minutes" json:"session_late_threshold_minutes"`

	// Metadata recurrence disimpan opaque (ekspansi jadwal di luar core)
	SessionRecurrence datatypes.JSON `gorm:"column:session_recurrence" json:"session_recurrence,omitempty"`

	SessionStatus    SessionStatus `gorm:"type:varchar(20);not null;default:draft;column:session_status" json:"session_status"`
	SessionCreatedBy uuid.UUID     `gorm:"type:uuid;not null;column:session_created_by" json:"session_created_by"`

	SessionCreatedAt time.Time      `gorm:"column:session_created_at;autoCreateTime" json:"session_created_at"`
	SessionUpdatedAt *time.Time     `gorm:"column:session_updated_at;autoUpdateTime" json:"session_updated_at,omitempty"`
	SessionDeletedAt gorm.DeletedAt `gorm:"column:session_deleted_at" json:"session_deleted_at,omitempty"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

func (m *SessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SessionID == uuid.Nil {
		m.SessionID = uuid.New()
	}
	return nil
}

// IsOpenForAttendance: hanya sesi scheduled/active yang menerima check-in.
func (m *SessionModel) IsOpenForAttendance() bool {
	return m.SessionStatus == SessionScheduled || m.SessionStatus == SessionActive
}
