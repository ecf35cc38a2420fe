package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"presensiku_backend/internals/features/attendance/sessions/model"
)

/* ===================== REQUESTS ===================== */

type CreateSessionRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Title          string    `json:"title" validate:"required,max=255"`

	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`

	Latitude     float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusMeters float64 `json:"radius_meters" validate:"required,gt=0"`

	Capacity             *int `json:"capacity" validate:"omitempty,gt=0"`
	LateThresholdMinutes int  `json:"late_threshold_minutes" validate:"omitempty,gte=0"`

	Recurrence datatypes.JSON `json:"recurrence" validate:"omitempty"`

	Status model.SessionStatus `json:"status" validate:"omitempty,oneof=draft scheduled"`
}

func (r *CreateSessionRequest) ToModel(createdBy uuid.UUID) *model.SessionModel {
	status := r.Status
	if status == "" {
		status = model.SessionDraft
	}
	lateThreshold := r.LateThresholdMinutes
	if lateThreshold == 0 {
		lateThreshold = 15
	}
	return &model.SessionModel{
		SessionOrganizationID:       r.OrganizationID,
		SessionTitle:                r.Title,
		SessionStartTime:            r.StartTime,
		SessionEndTime:              r.EndTime,
		SessionLatitude:             r.Latitude,
		SessionLongitude:            r.Longitude,
		SessionRadiusMeters:         r.RadiusMeters,
		SessionCapacity:             r.Capacity,
		SessionLateThresholdMinutes: lateThreshold,
		SessionRecurrence:           r.Recurrence,
		SessionStatus:               status,
		SessionCreatedBy:            createdBy,
	}
}

/* ===================== RESPONSES ===================== */

type SessionResponse struct {
	SessionID            uuid.UUID           `json:"session_id"`
	OrganizationID       uuid.UUID           `json:"organization_id"`
	Title                string              `json:"title"`
	StartTime            time.Time           `json:"start_time"`
	EndTime              time.Time           `json:"end_time"`
	Latitude             float64             `json:"latitude"`
	Longitude            float64             `json:"longitude"`
	RadiusMeters         float64             `json:"radius_meters"`
	Capacity             *int                `json:"capacity,omitempty"`
	CurrentCount         int                 `json:"current_count"`
	LateThresholdMinutes int                 `json:"late_threshold_minutes"`
	Status               model.SessionStatus `json:"status"`
	CreatedBy            uuid.UUID           `json:"created_by"`
	CreatedAt            time.Time           `json:"created_at"`
}

func FromSessionModel(m *model.SessionModel) SessionResponse {
	return SessionResponse{
		SessionID:            m.SessionID,
		OrganizationID:       m.SessionOrganizationID,
		Title:                m.SessionTitle,
		StartTime:            m.SessionStartTime,
		EndTime:              m.SessionEndTime,
		Latitude:             m.SessionLatitude,
		Longitude:            m.SessionLongitude,
		RadiusMeters:         m.SessionRadiusMeters,
		Capacity:             m.SessionCapacity,
		CurrentCount:         m.SessionCurrentCount,
		LateThresholdMinutes: m.SessionLateThresholdMinutes,
		Status:               m.SessionStatus,
		CreatedBy:            m.SessionCreatedBy,
		CreatedAt:            m.SessionCreatedAt,
	}
}
