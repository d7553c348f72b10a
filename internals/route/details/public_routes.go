package details

import (
	"github.com/gofiber/fiber/v2"
)

// PublicRoutes: bisa diakses tanpa login.
func PublicRoutes(app *fiber.App, d *Deps) {
	public := app.Group("/api/public")

	// status & jadwal jalur per sekolah (halaman landing PPDB)
	public.Get("/:school/settings", d.Settings.Get)

	// notifikasi pembayaran Midtrans
	public.Post("/midtrans/webhook", d.Application.HandlePaymentWebhook)
}
