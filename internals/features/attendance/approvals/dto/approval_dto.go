package dto

import (
	"presensiku_backend/internals/features/attendance/verification/model"
)

type ApproveAttendanceRequest struct {
	// Hanya present/late yang legal untuk approve
	NewStatus model.AttendanceStatus `json:"new_status" validate:"required,oneof=present late"`
	Notes     *string                `json:"notes" validate:"omitempty,max=2000"`
}

type RejectAttendanceRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type OverrideAttendanceRequest struct {
	// Override boleh ke status apapun, termasuk balik ke pending
	NewStatus model.AttendanceStatus `json:"new_status" validate:"required,oneof=pending present late absent rejected"`
	Notes     *string                `json:"notes" validate:"omitempty,max=2000"`
}
