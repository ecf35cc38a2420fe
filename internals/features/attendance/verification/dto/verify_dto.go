package dto

import (
	"time"

	"github.com/google/uuid"

	"presensiku_backend/internals/features/attendance/verification/model"
)

/* ===================== REQUESTS ===================== */

type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type VerifyAttendanceRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`

	// Opsional: tanpa QR = flow face-only re-entry
	QRCode string `json:"qr_code" validate:"omitempty,max=256"`

	// Opsional: 128 float di [-1,1] dari face-api sisi klien
	FaceDescriptor []float64 `json:"face_descriptor" validate:"omitempty,len=128,dive,gte=-1,lte=1"`

	Location *LocationRequest `json:"location" validate:"omitempty"`

	WebauthnCredentialID string `json:"webauthn_credential_id" validate:"omitempty,max=256"`

	EntryType model.AttendanceEntryType `json:"entry_type" validate:"omitempty,oneof=entry exit"`
}

/* ===================== RESPONSES ===================== */

type VerifyAttendanceResponse struct {
	Success            bool                   `json:"success"`
	AttendanceID       uuid.UUID              `json:"attendance_id"`
	Status             model.AttendanceStatus `json:"status"`
	VerificationMethod string                 `json:"verification_method"`
	FaceMatchScore     float64                `json:"face_match_score"`
	FaceMatch          bool                   `json:"face_match"`
	GPSValid           bool                   `json:"gps_valid"`
	DistanceFromVenue  *float64               `json:"distance_from_venue,omitempty"`
	VerifiedAt         time.Time              `json:"verified_at"`
}

func FromAttendanceModel(m *model.AttendanceModel) VerifyAttendanceResponse {
	return VerifyAttendanceResponse{
		Success:            true,
		AttendanceID:       m.AttendanceID,
		Status:             m.AttendanceStatus,
		VerificationMethod: m.AttendanceVerificationMethod,
		FaceMatchScore:     m.AttendanceFaceMatchScore,
		FaceMatch:          m.AttendanceFaceMatch,
		GPSValid:           m.AttendanceGPSValid,
		DistanceFromVenue:  m.AttendanceDistanceFromVenue,
		VerifiedAt:         m.AttendanceVerifiedAt,
	}
}

type AttendanceDetailResponse struct {
	AttendanceID        uuid.UUID                 `json:"attendance_id"`
	UserID              uuid.UUID                 `json:"user_id"`
	SessionID           uuid.UUID                 `json:"session_id"`
	Status              model.AttendanceStatus    `json:"status"`
	EntryType           model.AttendanceEntryType `json:"entry_type"`
	VerificationMethod  string                    `json:"verification_method"`
	FaceMatchScore      float64                   `json:"face_match_score"`
	FaceMatch           bool                      `json:"face_match"`
	GPSValid            bool                      `json:"gps_valid"`
	DistanceFromVenue   *float64                  `json:"distance_from_venue,omitempty"`
	VerifiedAt          time.Time                 `json:"verified_at"`
	ApprovedBy          *uuid.UUID                `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time                `json:"approved_at,omitempty"`
	AdminNotes          *string                   `json:"admin_notes,omitempty"`
	RejectionReason     *string                   `json:"rejection_reason,omitempty"`
}

func FromAttendanceModelDetail(m *model.AttendanceModel) AttendanceDetailResponse {
	return AttendanceDetailResponse{
		AttendanceID:       m.AttendanceID,
		UserID:             m.AttendanceUserID,
		SessionID:          m.AttendanceSessionID,
		Status:             m.AttendanceStatus,
		EntryType:          m.AttendanceEntryType,
		VerificationMethod: m.AttendanceVerificationMethod,
		FaceMatchScore:     m.AttendanceFaceMatchScore,
		FaceMatch:          m.AttendanceFaceMatch,
		GPSValid:           m.AttendanceGPSValid,
		DistanceFromVenue:  m.AttendanceDistanceFromVenue,
		VerifiedAt:         m.AttendanceVerifiedAt,
		ApprovedBy:         m.AttendanceApprovedBy,
		ApprovedAt:         m.AttendanceApprovedAt,
		AdminNotes:         m.AttendanceAdminNotes,
		RejectionReason:    m.AttendanceRejectionReason,
	}
}
