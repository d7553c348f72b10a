package middleware

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	helper "ppdb_backend/internals/helpers"
)

// IsAdmin: hanya akun role=admin yang boleh lewat. Dipasang setelah AuthJWT.
func IsAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocRole).(string)
		if role != constants.RoleAdmin {
			return helper.JsonError(c, fiber.StatusForbidden, "Akses khusus admin")
		}
		return c.Next()
	}
}
