package details

import (
	"log"

	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	applicationController "ppdb_backend/internals/features/admission/application/controller"
	applicationRepo "ppdb_backend/internals/features/admission/application/repository"
	applicationService "ppdb_backend/internals/features/admission/application/service"
	sessionController "ppdb_backend/internals/features/admission/session/controller"
	sessionRepo "ppdb_backend/internals/features/admission/session/repository"
	sessionService "ppdb_backend/internals/features/admission/session/service"
	settingsController "ppdb_backend/internals/features/admission/settings/controller"
	authController "ppdb_backend/internals/features/users/auth/controller"
	authRepo "ppdb_backend/internals/features/users/auth/repository"
	authService "ppdb_backend/internals/features/users/auth/service"
	userController "ppdb_backend/internals/features/users/user/controller"
	"ppdb_backend/internals/helpers/device"
	ossHelper "ppdb_backend/internals/helpers/oss"
)

// Deps: seluruh controller + shared service yang dipakai route.
// Dirakit sekali di SetupRoutes supaya wiring-nya kelihatan di satu tempat.
type Deps struct {
	DB       *gorm.DB
	Sessions *sessionService.SessionManager

	Auth        *authController.AuthController
	Session     *sessionController.SessionController
	Settings    *settingsController.SettingsController
	Application *applicationController.ApplicationController
	AdminApp    *applicationController.AdminApplicationController
	AdminUser   *userController.AdminUserController
}

func BuildDeps(db *gorm.DB) *Deps {
	devices := device.NewIdentityProvider()
	sessions := sessionService.NewSessionManager(
		sessionRepo.NewGormStore(db),
		configs.SessionInactivityTimeout(),
	)

	settingsCtl := settingsController.NewSettingsController(db)

	appRepo := applicationRepo.NewApplicationRepository(db)
	feeIDR := int64(configs.GetEnvInt("REGISTRATION_FEE_IDR", 0))
	appSvc := applicationService.NewApplicationService(appRepo, settingsCtl, feeIDR > 0)

	oss, err := ossHelper.NewOSSServiceFromEnv("")
	if err != nil {
		// tanpa OSS upload dokumen gagal; fitur lain tetap jalan
		log.Printf("[WARN] OSS tidak terkonfigurasi: %v", err)
	}

	return &Deps{
		DB:       db,
		Sessions: sessions,

		Auth:        authController.NewAuthController(authService.NewAuthService(db, sessions, devices)),
		Session:     sessionController.NewSessionController(sessions),
		Settings:    settingsCtl,
		Application: applicationController.NewApplicationController(appSvc, db, oss, feeIDR),
		AdminApp:    applicationController.NewAdminApplicationController(appSvc, appRepo),
		AdminUser:   userController.NewAdminUserController(db),
	}
}

// BlacklistChecker untuk middleware JWT.
func (d *Deps) BlacklistChecker() func(string) (bool, error) {
	return func(raw string) (bool, error) {
		return authRepo.IsTokenBlacklisted(d.DB, raw)
	}
}
