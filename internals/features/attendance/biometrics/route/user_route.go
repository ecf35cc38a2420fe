package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/biometrics/controller"
	"presensiku_backend/internals/features/attendance/biometrics/service"
	auditService "presensiku_backend/internals/features/audits/service"
	"presensiku_backend/internals/middlewares"
)

func BiometricUserRoutes(r fiber.Router, db *gorm.DB, matcher *service.MatcherService, recorder *auditService.Recorder) {
	ctrl := controller.NewFaceEnrollmentController(db, matcher, recorder)

	r.Post("/face/enroll", middlewares.EnrollRateLimiter(), ctrl.Enroll)
	r.Post("/face/re-enroll", middlewares.EnrollRateLimiter(), ctrl.ReEnroll)
}
