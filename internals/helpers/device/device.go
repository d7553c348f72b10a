// file: internals/helpers/device/device.go
package device

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderDeviceID = "X-Device-ID"
	CookieDeviceID = "device_id"

	// umur cookie device: identitas browser, bukan sesi — dibuat sekali lalu dipakai ulang
	cookieMaxAge = 2 * 365 * 24 * time.Hour
)

// IdentityProvider menghasilkan identifier per-instalasi-browser yang stabil.
// Kontrak GetOrCreate: pakai ulang nilai dari header/cookie kalau ada,
// generate sekali (uuid) kalau belum pernah ada.
type IdentityProvider struct{}

func NewIdentityProvider() *IdentityProvider {
	return &IdentityProvider{}
}

// GetOrCreate mengembalikan device id milik request ini beserta flag created.
// Device id baru otomatis di-set sebagai cookie tahan-lama supaya tab/kunjungan
// berikutnya memakai id yang sama.
func (p *IdentityProvider) GetOrCreate(c *fiber.Ctx) (string, bool) {
	if v := strings.TrimSpace(c.Get(HeaderDeviceID)); v != "" {
		return v, false
	}
	if v := strings.TrimSpace(c.Cookies(CookieDeviceID)); v != "" {
		return v, false
	}

	id := uuid.New().String()
	c.Cookie(&fiber.Cookie{
		Name:     CookieDeviceID,
		Value:    id,
		HTTPOnly: false, // dibaca juga oleh client untuk header X-Device-ID
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(cookieMaxAge),
	})
	return id, true
}

// Descriptor merangkum user agent + platform, informasional saja.
func Descriptor(c *fiber.Ctx) string {
	ua := strings.TrimSpace(c.Get(fiber.HeaderUserAgent))
	platform := strings.TrimSpace(c.Get("Sec-CH-UA-Platform"))
	if platform != "" {
		return ua + " | " + strings.Trim(platform, `"`)
	}
	return ua
}
