package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	sessionService "ppdb_backend/internals/features/admission/session/service"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/device"
	middleware "ppdb_backend/internals/middlewares/auth"
)

type SessionController struct {
	Manager *sessionService.SessionManager
	Devices *device.IdentityProvider
}

func NewSessionController(mgr *sessionService.SessionManager) *SessionController {
	return &SessionController{
		Manager: mgr,
		Devices: device.NewIdentityProvider(),
	}
}

func (sc *SessionController) currentIdentity(c *fiber.Ctx) (uuid.UUID, string, error) {
	userIDStr, _ := c.Locals(middleware.LocUserID).(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	deviceID, _ := sc.Devices.GetOrCreate(c)
	return userID, deviceID, nil
}

// Heartbeat: dipanggil client pada event aktivitas (sudah di-debounce di
// client). Endpoint idempoten; tanpa identitas valid jadi 401, bukan panic.
func (sc *SessionController) Heartbeat(c *fiber.Ctx) error {
	userID, deviceID, err := sc.currentIdentity(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	sc.Manager.Heartbeat(userID, deviceID)
	return helper.JsonOK(c, "Sesi diperbarui", nil)
}

// Check: cek berkala dari client. Record hilang/basi berarti sesi berakhir;
// client wajib sign-out lalu redirect ke halaman login.
func (sc *SessionController) Check(c *fiber.Ctx) error {
	userID, deviceID, err := sc.currentIdentity(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	if err := sc.Manager.CheckValidity(userID, deviceID); err != nil {
		if errors.Is(err, sessionService.ErrSessionInvalid) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Sesi Anda telah berakhir. Silakan login kembali.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa sesi")
	}
	return helper.JsonOK(c, "Sesi masih aktif", fiber.Map{
		"timeout_minutes": int(sc.Manager.Timeout().Minutes()),
	})
}

// Others: daftar sesi hidup di perangkat lain (informasional).
func (sc *SessionController) Others(c *fiber.Ctx) error {
	userID, deviceID, err := sc.currentIdentity(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return helper.JsonOK(c, "Sesi perangkat lain", sc.Manager.OtherLiveSessions(userID, deviceID))
}
