package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/verification/controller"
	"presensiku_backend/internals/features/attendance/verification/service"
	"presensiku_backend/internals/middlewares"
)

func VerificationUserRoutes(r fiber.Router, db *gorm.DB, engine *service.AttendanceEngine) {
	verifyCtrl := controller.NewVerifyController(db, engine)
	historyCtrl := controller.NewHistoryController(db)

	r.Post("/attendance/verify", middlewares.VerifyRateLimiter(), verifyCtrl.Verify)
	r.Get("/attendance/history", historyCtrl.List)
}
