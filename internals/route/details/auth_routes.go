package details

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/middlewares"
)

// AuthRoutes: endpoint auth tanpa JWT (login/register dibatasi rate limiter).
func AuthRoutes(app *fiber.App, d *Deps) {
	auth := app.Group("/api/auth")

	auth.Post("/register", middlewares.RegisterRateLimiter(), d.Auth.Register)
	auth.Post("/login", middlewares.LoginRateLimiter(), d.Auth.Login)
	auth.Post("/login-google", middlewares.LoginRateLimiter(), d.Auth.LoginGoogle)
	auth.Post("/refresh-token", d.Auth.RefreshToken)
	auth.Post("/logout", d.Auth.Logout)
}
