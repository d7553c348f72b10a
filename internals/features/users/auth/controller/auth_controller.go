package controller

import (
	"github.com/gofiber/fiber/v2"

	authService "ppdb_backend/internals/features/users/auth/service"
)

// AuthController: wrapper tipis; seluruh alur ada di service.
type AuthController struct {
	Service *authService.AuthService
}

func NewAuthController(svc *authService.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	return ac.Service.Register(c)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	return ac.Service.Login(c)
}

func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	return ac.Service.LoginGoogle(c)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return ac.Service.RefreshToken(c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return ac.Service.Logout(c)
}
