// file: internals/route/routes.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	routeDetails "ppdb_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	deps := routeDetails.BuildDeps(db)

	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, deps)

	log.Println("[INFO] Setting up PUBLIC routes...")
	routeDetails.PublicRoutes(app, deps)

	log.Println("[INFO] Setting up USER group (/api/u)...")
	routeDetails.UserRoutes(app, deps)

	log.Println("[INFO] Setting up ADMIN group (/api/a)...")
	routeDetails.AdminRoutes(app, deps)

	// health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"uptime": time.Since(startTime).String(),
			"env":    configs.GetEnv("APP_ENV", "development"),
		})
	})
}
