package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// Path :id yang bukan UUID harus berhenti di byID dengan 400, tidak boleh
// sampai menyentuh DB (ctl.DB sengaja nil di sini).
func TestAdminUserControllerInvalidID(t *testing.T) {
	ctl := NewAdminUserController(nil)

	app := fiber.New()
	app.Get("/users/:id", ctl.Detail)
	app.Delete("/users/:id", ctl.Delete)

	cases := []struct {
		name   string
		method string
	}{
		{"detail", fiber.MethodGet},
		{"delete", fiber.MethodDelete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/users/bukan-uuid", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("status = %d, mau %d", resp.StatusCode, fiber.StatusBadRequest)
			}

			body, _ := io.ReadAll(resp.Body)
			var out struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if out.Message != "ID user tidak valid" {
				t.Errorf("message = %q, mau %q", out.Message, "ID user tidak valid")
			}
		})
	}
}
