package controller

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/approvals/dto"
	"presensiku_backend/internals/features/attendance/approvals/service"
	sessionService "presensiku_backend/internals/features/attendance/sessions/service"
	verifDto "presensiku_backend/internals/features/attendance/verification/dto"
	auditService "presensiku_backend/internals/features/audits/service"
	helper "presensiku_backend/internals/helpers"
)

type ApprovalController struct {
	DB        *gorm.DB
	Approvals *service.ApprovalService
	validate  *validator.Validate
}

func NewApprovalController(db *gorm.DB, approvals *service.ApprovalService) *ApprovalController {
	return &ApprovalController{
		DB:        db,
		Approvals: approvals,
		validate:  validator.New(),
	}
}

// POST /attendances/:id/approve
func (ctrl *ApprovalController) Approve(c *fiber.Ctx) error {
	approverID, attendanceID, err := ctrl.actorAndTarget(c)
	if err != nil {
		return err
	}

	var payload dto.ApproveAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	att, err := ctrl.Approvals.Approve(attendanceID, approverID, payload.NewStatus, payload.Notes, ctrl.meta(c))
	if err != nil {
		return ctrl.mapWorkflowError(c, err)
	}

	return helper.JsonUpdated(c, "Kehadiran disetujui", verifDto.FromAttendanceModelDetail(att))
}

// POST /attendances/:id/reject
func (ctrl *ApprovalController) Reject(c *fiber.Ctx) error {
	approverID, attendanceID, err := ctrl.actorAndTarget(c)
	if err != nil {
		return err
	}

	var payload dto.RejectAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	att, err := ctrl.Approvals.Reject(attendanceID, approverID, payload.Reason, ctrl.meta(c))
	if err != nil {
		return ctrl.mapWorkflowError(c, err)
	}

	return helper.JsonUpdated(c, "Kehadiran ditolak", verifDto.FromAttendanceModelDetail(att))
}

// POST /attendances/:id/override
func (ctrl *ApprovalController) Override(c *fiber.Ctx) error {
	approverID, attendanceID, err := ctrl.actorAndTarget(c)
	if err != nil {
		return err
	}

	var payload dto.OverrideAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	att, err := ctrl.Approvals.Override(attendanceID, approverID, payload.NewStatus, payload.Notes, ctrl.meta(c))
	if err != nil {
		return ctrl.mapWorkflowError(c, err)
	}

	return helper.JsonUpdated(c, "Status kehadiran di-override", verifDto.FromAttendanceModelDetail(att))
}

// DELETE /attendances/:id
func (ctrl *ApprovalController) Delete(c *fiber.Ctx) error {
	actorID, attendanceID, err := ctrl.actorAndTarget(c)
	if err != nil {
		return err
	}

	if err := ctrl.Approvals.Delete(attendanceID, actorID, ctrl.meta(c)); err != nil {
		return ctrl.mapWorkflowError(c, err)
	}

	return helper.JsonDeleted(c, "Record kehadiran dihapus", fiber.Map{"attendance_id": attendanceID})
}

func (ctrl *ApprovalController) actorAndTarget(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	attendanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, "attendance_id tidak valid")
	}
	return actorID, attendanceID, nil
}

func (ctrl *ApprovalController) meta(c *fiber.Ctx) auditService.ClientMeta {
	ip, ua := helper.ClientMeta(c)
	return auditService.ClientMeta{IPAddress: ip, UserAgent: ua}
}

func (ctrl *ApprovalController) mapWorkflowError(c *fiber.Ctx, err error) error {
	var notPending *service.NotPendingError
	switch {
	case errors.As(err, &notPending):
		// Status saat ini ikut dikirim supaya UI bisa menjelaskan penolakan
		return helper.JsonError(c, fiber.StatusConflict,
			fmt.Sprintf("Record tidak lagi pending (status saat ini: %s)", notPending.CurrentStatus))
	case errors.Is(err, service.ErrAttendanceNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Record kehadiran tidak ditemukan")
	case errors.Is(err, service.ErrInvalidTargetStatus):
		return helper.JsonError(c, fiber.StatusBadRequest, "Status tujuan tidak valid")
	case errors.Is(err, sessionService.ErrSessionFull):
		return helper.JsonError(c, fiber.StatusConflict, "Kapasitas sesi sudah penuh")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Operasi workflow gagal")
	}
}
