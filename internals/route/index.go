package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/constants"
	authMiddleware "presensiku_backend/internals/middlewares/auth"
	routeDetails "presensiku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u", authMiddleware.AuthMiddleware())

	// ===================== MANAGER =====================
	log.Println("[INFO] Setting up MANAGER group (Auth + RoleCheck)...")
	manager := app.Group("/api/m",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(
			constants.RoleErrorManager("manajemen sesi"),
			constants.ManagerAndAbove...,
		),
	)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(
			constants.RoleErrorAdmin("approval kehadiran"),
			constants.AdminAndAbove...,
		),
	)

	log.Println("[INFO] Setting up AttendanceRoutes...")
	routeDetails.AttendanceRoutes(user, manager, admin, db)
}
