package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/qr_tokens/controller"
	"presensiku_backend/internals/features/attendance/qr_tokens/service"
	auditService "presensiku_backend/internals/features/audits/service"
)

func QRTokenAdminRoutes(r fiber.Router, db *gorm.DB, tokens *service.QRTokenService, recorder *auditService.Recorder) {
	ctrl := controller.NewQRTokenController(db, tokens, recorder)

	r.Post("/sessions/:id/qr-token", ctrl.Issue)
	r.Post("/sessions/:id/qr-token/rotate", ctrl.Rotate)
}
