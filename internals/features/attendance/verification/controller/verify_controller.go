package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	qrService "presensiku_backend/internals/features/attendance/qr_tokens/service"
	sessionService "presensiku_backend/internals/features/attendance/sessions/service"
	"presensiku_backend/internals/features/attendance/verification/dto"
	"presensiku_backend/internals/features/attendance/verification/service"
	auditService "presensiku_backend/internals/features/audits/service"
	helper "presensiku_backend/internals/helpers"
)

type VerifyController struct {
	DB       *gorm.DB
	Engine   *service.AttendanceEngine
	validate *validator.Validate
}

func NewVerifyController(db *gorm.DB, engine *service.AttendanceEngine) *VerifyController {
	return &VerifyController{
		DB:       db,
		Engine:   engine,
		validate: validator.New(),
	}
}

// POST /attendance/verify
func (ctrl *VerifyController) Verify(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var payload dto.VerifyAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	actor := service.Actor{
		UserID: userID,
		Role:   helper.GetUserRoleFromToken(c),
	}
	input := service.VerifyInput{
		SessionID:      payload.SessionID,
		QRCode:         payload.QRCode,
		FaceDescriptor: payload.FaceDescriptor,
		WebauthnUsed:   payload.WebauthnCredentialID != "",
		EntryType:      payload.EntryType,
	}
	if payload.Location != nil {
		input.Location = &service.Coordinates{
			Latitude:  payload.Location.Latitude,
			Longitude: payload.Location.Longitude,
		}
	}

	ip, ua := helper.ClientMeta(c)
	attendance, _, err := ctrl.Engine.Verify(actor, input, auditService.ClientMeta{
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		return ctrl.mapVerifyError(c, err)
	}

	return helper.JsonCreated(c, "Kehadiran berhasil diverifikasi", dto.FromAttendanceModel(attendance))
}

// Mapping error taxonomy → HTTP. Detail internal tidak bocor ke production.
func (ctrl *VerifyController) mapVerifyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, qrService.ErrInvalidQRToken):
		return helper.JsonError(c, fiber.StatusBadRequest, "Kode QR tidak valid atau sudah kadaluarsa")
	case errors.Is(err, service.ErrDuplicateAttendance):
		return helper.JsonError(c, fiber.StatusConflict, "Kehadiran untuk sesi ini sudah tercatat")
	case errors.Is(err, service.ErrFaceVerificationFailed):
		return helper.JsonError(c, fiber.StatusForbidden, "Verifikasi wajah gagal, silakan ulangi seluruh proses")
	case errors.Is(err, service.ErrSessionNotOpen):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi tidak menerima check-in")
	case errors.Is(err, service.ErrInvalidCoordinates):
		return helper.JsonError(c, fiber.StatusBadRequest, "Koordinat lokasi tidak valid")
	case errors.Is(err, sessionService.ErrSessionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Sesi tidak ditemukan")
	case errors.Is(err, sessionService.ErrSessionFull):
		return helper.JsonError(c, fiber.StatusConflict, "Kapasitas sesi sudah penuh")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Verifikasi gagal")
	}
}
