package dto

import (
	"time"

	"github.com/google/uuid"

	"presensiku_backend/internals/features/attendance/biometrics/model"
)

/* ===================== REQUESTS ===================== */

type EnrollFaceRequest struct {
	// 128 float di [-1,1]; plaintext tidak pernah di-echo balik
	FaceDescriptor []float64 `json:"face_descriptor" validate:"required,len=128,dive,gte=-1,lte=1"`
	ImageURL       *string   `json:"image_url" validate:"omitempty,url"`
}

/* ===================== RESPONSES ===================== */

// Response sengaja TIDAK membawa descriptor (terenkripsi sekalipun).
type FaceEnrollmentResponse struct {
	FaceEnrollmentID        uuid.UUID  `json:"face_enrollment_id"`
	UserID                  uuid.UUID  `json:"user_id"`
	ConfidenceThreshold     float64    `json:"confidence_threshold"`
	VerificationCount       int        `json:"verification_count"`
	LastVerifiedAt          *time.Time `json:"last_verified_at,omitempty"`
	RequiresReverification  bool       `json:"requires_reverification"`
	CreatedAt               time.Time  `json:"created_at"`
}

func FromFaceEnrollmentModel(m *model.FaceEnrollmentModel) FaceEnrollmentResponse {
	return FaceEnrollmentResponse{
		FaceEnrollmentID:       m.FaceEnrollmentID,
		UserID:                 m.FaceEnrollmentUserID,
		ConfidenceThreshold:    m.FaceEnrollmentConfidenceThreshold,
		VerificationCount:      m.FaceEnrollmentVerificationCount,
		LastVerifiedAt:         m.FaceEnrollmentLastVerifiedAt,
		RequiresReverification: m.FaceEnrollmentRequiresReverification,
		CreatedAt:              m.FaceEnrollmentCreatedAt,
	}
}
