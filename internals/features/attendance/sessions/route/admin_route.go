package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/sessions/controller"
)

// Route untuk session manager ke atas (group sudah dipasangi role middleware)
func SessionAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSessionController(db)

	r.Post("/sessions", ctrl.Create)
	r.Get("/sessions/:id/attendances", ctrl.ListAttendances)
}
