package service

import (
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	sessionService "ppdb_backend/internals/features/admission/session/service"
	authHelper "ppdb_backend/internals/features/users/auth/helper"
	authModel "ppdb_backend/internals/features/users/auth/model"
	authRepo "ppdb_backend/internals/features/users/auth/repository"
	userModel "ppdb_backend/internals/features/users/user/model"
	helpers "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/device"
)

const (
	accessTTLDefault  = 15 * time.Minute
	refreshTTLDefault = 7 * 24 * time.Hour
)

func nowUTC() time.Time { return time.Now().UTC() }

func strptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// AuthService membungkus alur auth + registrasi sesi perangkat. Sessions
// nil-safe: tanpa manager, login tetap jalan tanpa pencatatan sesi.
type AuthService struct {
	DB       *gorm.DB
	Sessions *sessionService.SessionManager
	Devices  *device.IdentityProvider
}

func NewAuthService(db *gorm.DB, sessions *sessionService.SessionManager, devices *device.IdentityProvider) *AuthService {
	return &AuthService{DB: db, Sessions: sessions, Devices: devices}
}

/* ==========================
   REGISTER
========================== */

func (s *AuthService) Register(c *fiber.Ctx) error {
	var input struct {
		UserName string `json:"user_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}

	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := authHelper.ValidateRegisterInput(input.UserName, input.Email, input.Password); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if taken, err := authRepo.IsUsernameTaken(s.DB, input.UserName); err == nil && taken {
		return helpers.JsonError(c, fiber.StatusConflict, "Nama pengguna sudah dipakai")
	}

	hashed, err := authHelper.HashPassword(input.Password)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}

	user := userModel.UserModel{
		UserName: input.UserName,
		Email:    input.Email,
		Password: hashed,
		IsActive: true,
	}
	if err := user.Validate(); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := authRepo.CreateUser(s.DB, &user); err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "duplicate key") || strings.Contains(low, "unique") {
			return helpers.JsonError(c, fiber.StatusConflict, "Email sudah terdaftar")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat akun")
	}

	return helpers.JsonCreated(c, "Registrasi berhasil", fiber.Map{
		"id":        user.ID,
		"user_name": user.UserName,
		"email":     user.Email,
	})
}

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Identifier = strings.TrimSpace(input.Identifier)

	if err := authHelper.ValidateLoginInput(input.Identifier, input.Password); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := authRepo.FindUserByEmailOrUsername(s.DB, input.Identifier)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Identifier atau Password salah")
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	}
	if err := authHelper.CheckPasswordHash(user.Password, input.Password); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Identifier atau Password salah")
	}

	return s.issueTokens(c, user)
}

/* ==========================
   LOGIN GOOGLE
========================== */

func (s *AuthService) LoginGoogle(c *fiber.Ctx) error {
	var input struct {
		IDToken string `json:"id_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Invalid Google ID Token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to decode ID Token")
	}
	email, name, googleID := claimSet.Email, claimSet.Name, claimSet.Sub

	user, err := authRepo.FindUserByGoogleID(s.DB, googleID)
	if err != nil {
		// akun belum ada, buat baru
		newUser := userModel.UserModel{
			UserName: name,
			Email:    strings.ToLower(email),
			Password: generateDummyPassword(),
			GoogleID: &googleID,
			IsActive: true,
		}
		if err := authRepo.CreateUser(s.DB, &newUser); err != nil {
			low := strings.ToLower(err.Error())
			if strings.Contains(low, "duplicate key") || strings.Contains(low, "unique") {
				return helpers.JsonError(c, fiber.StatusConflict, "Email sudah terdaftar")
			}
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat akun Google")
		}
		user = &newUser
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	}

	return s.issueTokens(c, user)
}

/* ==========================
   ISSUE TOKENS + Response
========================== */

func buildAccessClaims(u *userModel.UserModel, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"id":        u.ID.String(),
		"user_name": u.UserName,
		"role":      u.Role,
		"typ":       "access",
		"iat":       now.Unix(),
		"exp":       now.Add(accessTTLDefault).Unix(),
	}
}

func buildRefreshClaims(userID uuid.UUID, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": userID.String(),
		"typ": "refresh",
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
}

func (s *AuthService) issueTokens(c *fiber.Ctx, user *userModel.UserModel) error {
	if configs.JWTSecret == "" || configs.JWTRefreshSecret == "" {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Konfigurasi JWT belum lengkap")
	}
	now := nowUTC()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, now)).
		SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat access token")
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(user.ID, now)).
		SignedString([]byte(configs.JWTRefreshSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat refresh token")
	}

	// simpan hash refresh token, bukan plaintext
	ua, ip := c.Get("User-Agent"), c.IP()
	if err := authRepo.CreateRefreshToken(s.DB, &authModel.RefreshToken{
		UserID:    user.ID,
		TokenHash: authRepo.ComputeRefreshHash(refreshToken, configs.JWTRefreshSecret),
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: strptr(ua),
		IP:        strptr(ip),
	}); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan refresh token")
	}

	setAuthCookies(c, accessToken, refreshToken, now)

	// Catat sesi perangkat ini + laporkan sesi hidup lain (advisory).
	var others []sessionService.OtherSession
	if s.Sessions != nil && s.Devices != nil {
		deviceID, _ := s.Devices.GetOrCreate(c)
		others = s.Sessions.OtherLiveSessions(user.ID, deviceID)
		if err := s.Sessions.Register(user.ID, deviceID, device.Descriptor(c)); err != nil {
			log.Printf("[WARN] gagal registrasi sesi perangkat (user=%s): %v", user.ID, err)
		}
	}

	return helpers.JsonOK(c, "Login berhasil", fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"user_name": user.UserName,
			"email":     user.Email,
			"role":      user.Role,
		},
		"access_token":   accessToken,
		"other_sessions": others,
	})
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTLDefault),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(refreshTTLDefault),
	})
}

/* ==========================
   REFRESH TOKEN
========================== */

func (s *AuthService) RefreshToken(c *fiber.Ctx) error {
	raw := helpers.GetRefreshTokenFromCookie(c)
	if raw == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&input)
		raw = strings.TrimSpace(input.RefreshToken)
	}
	if raw == "" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak ditemukan")
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(configs.JWTRefreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid")
	}

	// token harus masih tercatat di DB (revokable)
	hash := authRepo.ComputeRefreshHash(raw, configs.JWTRefreshSecret)
	stored, err := authRepo.FindRefreshTokenByHash(s.DB, hash)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token sudah tidak berlaku")
	}

	user, err := authRepo.FindUserByID(s.DB, stored.UserID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data user")
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	}

	// rotasi: token lama dihapus, token baru diterbitkan
	_ = authRepo.DeleteRefreshTokenByHash(s.DB, hash)
	return s.issueTokens(c, user)
}

/* ==========================
   LOGOUT
========================== */

func (s *AuthService) Logout(c *fiber.Ctx) error {
	accessToken := helpers.GetRawAccessToken(c)

	if accessToken != "" {
		if err := authRepo.BlacklistToken(s.DB, accessToken, resolveBlacklistTTL(accessToken)); err != nil {
			log.Printf("[WARN] Gagal blacklist token: %v", err)
		}
	} else {
		log.Println("[INFO] Logout tanpa access token; lanjut clear cookies (idempotent)")
	}

	if rt := helpers.GetRefreshTokenFromCookie(c); rt != "" {
		_ = authRepo.DeleteRefreshTokenByHash(s.DB, authRepo.ComputeRefreshHash(rt, configs.JWTRefreshSecret))
	}

	// hapus record sesi perangkat ini; logout di device lain tidak tersentuh
	if s.Sessions != nil && s.Devices != nil && accessToken != "" {
		if claims := parseClaimsUnverified(accessToken); claims != nil {
			if id, err := uuid.Parse(strClaim(claims, "id")); err == nil {
				deviceID, _ := s.Devices.GetOrCreate(c)
				_ = s.Sessions.Remove(id, deviceID)
			}
		}
	}

	expired := nowUTC().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}

	return helpers.JsonOK(c, "Logout berhasil", nil)
}

func resolveBlacklistTTL(accessToken string) time.Duration {
	ttl := 2 * time.Minute
	if configs.JWTSecret == "" || accessToken == "" {
		return ttl
	}
	if tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return []byte(configs.JWTSecret), nil
	}); err == nil {
		if claims, ok := tok.Claims.(jwt.MapClaims); ok && tok.Valid {
			if exp, ok := claims["exp"].(float64); ok {
				until := time.Until(time.Unix(int64(exp), 0))
				if until > 0 {
					return until + 60*time.Second
				}
				return time.Minute
			}
		}
	}
	return ttl
}

/* ==========================
   UTIL
========================== */

func parseClaimsUnverified(token string) jwt.MapClaims {
	parser := jwt.NewParser()
	tok, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	return claims
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func generateDummyPassword() string {
	hash, _ := authHelper.HashPassword(uuid.NewString() + "!Aa1")
	return hash
}
