package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/qr_tokens/service"
	auditModel "presensiku_backend/internals/features/audits/model"
	auditService "presensiku_backend/internals/features/audits/service"
	helper "presensiku_backend/internals/helpers"
)

type QRTokenController struct {
	DB       *gorm.DB
	Tokens   *service.QRTokenService
	Recorder *auditService.Recorder
}

func NewQRTokenController(db *gorm.DB, tokens *service.QRTokenService, recorder *auditService.Recorder) *QRTokenController {
	return &QRTokenController{DB: db, Tokens: tokens, Recorder: recorder}
}

// POST /sessions/:id/qr-token — terbitkan token baru (tanpa menonaktifkan yang lama)
func (ctrl *QRTokenController) Issue(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}

	token, err := ctrl.Tokens.Issue(sessionID)
	if err != nil {
		return ctrl.mapTokenError(c, err)
	}

	// Kode hanya keluar lewat response ini; di JSON model selalu disembunyikan
	return helper.JsonCreated(c, "Token QR diterbitkan", fiber.Map{
		"qr_token_id": token.QRTokenID,
		"code":        token.QRTokenCode,
		"expires_at":  token.QRTokenExpiresAt,
	})
}

// POST /sessions/:id/qr-token/rotate — nonaktifkan semua token aktif, terbitkan baru
func (ctrl *QRTokenController) Rotate(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}

	token, err := ctrl.Tokens.Rotate(sessionID)
	if err != nil {
		return ctrl.mapTokenError(c, err)
	}

	actorID, _ := helper.GetUserIDFromToken(c)
	ip, ua := helper.ClientMeta(c)
	if err := ctrl.Recorder.WriteAudit(ctrl.DB, &actorID, auditModel.AuditQRTokenRotated,
		"session", &sessionID, nil,
		map[string]any{"qr_token_id": token.QRTokenID},
		nil, auditService.ClientMeta{IPAddress: ip, UserAgent: ua}); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mencatat audit rotasi")
	}

	return helper.JsonCreated(c, "Token QR dirotasi", fiber.Map{
		"qr_token_id": token.QRTokenID,
		"code":        token.QRTokenCode,
		"expires_at":  token.QRTokenExpiresAt,
	})
}

func (ctrl *QRTokenController) mapTokenError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Sesi tidak ditemukan")
	case errors.Is(err, service.ErrSessionNotOpen):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi tidak menerima check-in")
	case errors.Is(err, service.ErrSessionHasEnded):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Sesi sudah berakhir")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses token QR")
	}
}
