package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// Path :id yang bukan UUID harus berhenti di byID dengan 400; repo sengaja
// nil supaya ketahuan kalau handler lolos sampai query.
func TestAdminApplicationControllerInvalidID(t *testing.T) {
	ctl := &AdminApplicationController{}

	app := fiber.New()
	app.Get("/applications/:id", ctl.Detail)
	app.Post("/applications/:id/accept", ctl.Accept)
	app.Delete("/applications/:id", ctl.Delete)

	cases := []struct {
		name   string
		method string
		path   string
	}{
		{"detail", fiber.MethodGet, "/applications/bukan-uuid"},
		{"accept", fiber.MethodPost, "/applications/bukan-uuid/accept"},
		{"delete", fiber.MethodDelete, "/applications/bukan-uuid"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
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
			if out.Message != "ID pendaftaran tidak valid" {
				t.Errorf("message = %q, mau %q", out.Message, "ID pendaftaran tidak valid")
			}
		})
	}
}
