package details

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/configs"
	middleware "ppdb_backend/internals/middlewares/auth"
)

// AdminRoutes: grup /api/a (JWT + role admin).
func AdminRoutes(app *fiber.App, d *Deps) {
	a := app.Group("/api/a",
		middleware.AuthJWT(middleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    d.BlacklistChecker(),
			AllowCookieFallback: true,
		}),
		middleware.IsAdmin(),
	)

	// ===== Pengaturan jalur =====
	a.Get("/:school/settings", d.Settings.Get)
	a.Put("/:school/settings", d.Settings.Update)

	// ===== Pendaftaran =====
	a.Get("/:school/applications", d.AdminApp.List)
	a.Get("/:school/applications/stats", d.AdminApp.Stats)
	a.Get("/:school/applications/export", d.AdminApp.ExportCSV)
	a.Get("/:school/applications/:id", d.AdminApp.Detail)
	a.Post("/:school/applications/:id/accept", d.AdminApp.Accept)
	a.Post("/:school/applications/:id/reject", d.AdminApp.Reject)
	a.Post("/:school/applications/:id/reset", d.AdminApp.Reset)
	a.Delete("/:school/applications/:id", d.AdminApp.Delete)

	// ===== Manajemen akun =====
	a.Get("/users", d.AdminUser.List)
	a.Post("/users", d.AdminUser.Create)
	a.Get("/users/:id", d.AdminUser.Detail)
	a.Put("/users/:id", d.AdminUser.Update)
	a.Post("/users/:id/reset-password", d.AdminUser.ResetPassword)
	a.Delete("/users/:id", d.AdminUser.Delete)
}
