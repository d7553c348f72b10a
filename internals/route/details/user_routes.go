package details

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/configs"
	middleware "ppdb_backend/internals/middlewares/auth"
)

// UserRoutes: grup /api/u untuk pendaftar (JWT wajib).
func UserRoutes(app *fiber.App, d *Deps) {
	u := app.Group("/api/u",
		middleware.AuthJWT(middleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			BlacklistChecker:    d.BlacklistChecker(),
			AllowCookieFallback: true,
		}),
	)

	// ===== Sesi perangkat =====
	u.Post("/session/heartbeat", d.Session.Heartbeat)
	u.Get("/session/check", d.Session.Check)
	u.Get("/session/others", d.Session.Others)

	// ===== Formulir pendaftaran per sekolah =====
	u.Get("/:school/application", d.Application.Get)
	u.Put("/:school/application", d.Application.SaveDraft)
	u.Post("/:school/application/check-nik", d.Application.CheckNIK)
	u.Post("/:school/application/documents/:slot", d.Application.UploadDocument)
	u.Delete("/:school/application/documents/:slot", d.Application.DeleteDocument)
	u.Post("/:school/application/submit", d.Application.Submit)
	u.Post("/:school/application/payment", d.Application.Pay)
}
