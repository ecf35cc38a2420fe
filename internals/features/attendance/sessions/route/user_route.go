package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/sessions/controller"
)

func SessionUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSessionController(db)

	r.Get("/sessions", ctrl.List)
	r.Get("/sessions/:id", ctrl.GetByID)
}
