package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/approvals/controller"
	"presensiku_backend/internals/features/attendance/approvals/service"
)

func ApprovalAdminRoutes(r fiber.Router, db *gorm.DB, approvals *service.ApprovalService) {
	ctrl := controller.NewApprovalController(db, approvals)

	r.Post("/attendances/:id/approve", ctrl.Approve)
	r.Post("/attendances/:id/reject", ctrl.Reject)
	r.Post("/attendances/:id/override", ctrl.Override)
	r.Delete("/attendances/:id", ctrl.Delete)
}
