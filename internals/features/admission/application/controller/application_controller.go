package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/admission/application/dto"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	applicationService "ppdb_backend/internals/features/admission/application/service"
	"ppdb_backend/internals/features/admission/application/validation"
	userModel "ppdb_backend/internals/features/users/user/model"
	helper "ppdb_backend/internals/helpers"
	ossHelper "ppdb_backend/internals/helpers/oss"
	middleware "ppdb_backend/internals/middlewares/auth"
)

var validate = validator.New()

// Slot dokumen yang bisa diunggah pendaftar.
var uploadableSlots = map[string]bool{
	validation.DocSlotPhoto:            true,
	validation.DocSlotCertificate:      true,
	validation.DocSlotReportCard(2):    true,
	validation.DocSlotReportCard(3):    true,
	validation.DocSlotReportCard(4):    true,
}

type ApplicationController struct {
	Service *applicationService.ApplicationService
	DB      *gorm.DB
	OSS     *ossHelper.OSSService

	// FeeAmountIDR: biaya pendaftaran; 0 = gratis (endpoint payment nonaktif).
	FeeAmountIDR int64
}

func NewApplicationController(svc *applicationService.ApplicationService, db *gorm.DB, oss *ossHelper.OSSService, feeIDR int64) *ApplicationController {
	return &ApplicationController{Service: svc, DB: db, OSS: oss, FeeAmountIDR: feeIDR}
}

func ownerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals(middleware.LocUserID).(string)
	return uuid.Parse(raw)
}

func schoolParam(c *fiber.Ctx) (string, bool) {
	school := c.Params("school")
	return school, constants.IsValidSchool(school)
}

// Get: formulir milik pendaftar (dibuat otomatis kalau belum ada).
func (ctl *ApplicationController) Get(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	a, err := ctl.Service.GetOrCreate(uid, school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	return helper.JsonOK(c, "Data pendaftaran", dto.NewApplicationResponse(a))
}

// SaveDraft: autosave formulir; konten tidak divalidasi di sini.
func (ctl *ApplicationController) SaveDraft(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SaveDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	a, err := ctl.Service.SaveDraft(uid, school, &req)
	switch {
	case errors.Is(err, applicationService.ErrAlreadySubmitted):
		return helper.JsonError(c, fiber.StatusConflict, "Pendaftaran sudah dikirim dan tidak bisa diubah")
	case errors.Is(err, applicationService.ErrInvalidTrack):
		return helper.JsonError(c, fiber.StatusBadRequest, "Jalur pendaftaran tidak dikenal")
	case errors.Is(err, applicationService.ErrSwitchNeedsConfirm):
		return helper.JsonError(c, fiber.StatusConflict,
			"Ganti jalur akan menghapus nilai dan rapor yang sudah diisi. Kirim ulang dengan confirm_track_switch=true.")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan draft")
	}
	return helper.JsonUpdated(c, "Draft tersimpan", dto.NewApplicationResponse(a))
}

// CheckNIK: validasi format + cek duplikasi live saat mengetik. Seq dari
// client dipantulkan kembali supaya balasan yang telat bisa dibuang.
func (ctl *ApplicationController) CheckNIK(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CheckNIKRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "NIK wajib diisi")
	}

	valid, duplicate, msg := ctl.Service.CheckNIK(uid, school, req.NIK)
	return helper.JsonOK(c, "Hasil cek NIK", dto.CheckNIKResponse{
		Seq:       req.Seq,
		Valid:     valid,
		Duplicate: duplicate,
		Message:   msg,
	})
}

// UploadDocument: unggah satu slot dokumen. Pas foto dikonversi WebP,
// sisanya disimpan apa adanya. File lama di slot yang sama dihapus.
func (ctl *ApplicationController) UploadDocument(c *fiber.Ctx) error {
	if ctl.OSS == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Penyimpanan dokumen belum dikonfigurasi")
	}
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	slot := c.Params("slot")
	if !uploadableSlots[slot] {
		return helper.JsonError(c, fiber.StatusBadRequest, "Slot dokumen tidak dikenal")
	}

	a, err := ctl.Service.GetOrCreate(uid, school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	if a.IsSubmitted() {
		return helper.JsonError(c, fiber.StatusConflict, "Pendaftaran sudah dikirim dan tidak bisa diubah")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File tidak ditemukan di form field 'file'")
	}

	dir := "ppdb/" + school + "/" + a.ID.String()
	var url string
	if slot == validation.DocSlotPhoto {
		url, err = ctl.OSS.UploadImageAsWebP(dir, fh)
	} else {
		url, err = ctl.OSS.UploadRaw(dir, fh)
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Gagal mengunggah file: "+err.Error())
	}

	if old := a.DocumentURL(slot); old != "" && old != url {
		if delErr := ctl.OSS.DeleteByPublicURL(old); delErr != nil {
			log.Printf("[WARN] gagal hapus file lama slot %s: %v", slot, delErr)
		}
	}
	a.SetDocumentURL(slot, url)
	if err := ctl.Service.Repo.Save(a); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan dokumen")
	}

	return helper.JsonUpdated(c, "Dokumen terunggah", fiber.Map{"slot": slot, "url": url})
}

// DeleteDocument: kosongkan satu slot dokumen.
func (ctl *ApplicationController) DeleteDocument(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	slot := c.Params("slot")
	if !uploadableSlots[slot] {
		return helper.JsonError(c, fiber.StatusBadRequest, "Slot dokumen tidak dikenal")
	}

	a, err := ctl.Service.GetOrCreate(uid, school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	if a.IsSubmitted() {
		return helper.JsonError(c, fiber.StatusConflict, "Pendaftaran sudah dikirim dan tidak bisa diubah")
	}

	if old := a.DocumentURL(slot); old != "" && ctl.OSS != nil {
		if delErr := ctl.OSS.DeleteByPublicURL(old); delErr != nil {
			log.Printf("[WARN] gagal hapus file slot %s: %v", slot, delErr)
		}
	}
	a.ClearDocument(slot)
	if err := ctl.Service.Repo.Save(a); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan dokumen")
	}
	return helper.JsonDeleted(c, "Dokumen dihapus", fiber.Map{"slot": slot})
}

// Submit: finalisasi. Gagal validasi → 422 dengan satu pesan per kategori.
func (ctl *ApplicationController) Submit(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	a, res, err := ctl.Service.Submit(uid, school, &req)
	switch {
	case errors.Is(err, applicationService.ErrValidationFailed):
		return helper.JsonValidationError(c, "Formulir belum memenuhi syarat", res.FieldErrors())
	case errors.Is(err, applicationService.ErrConfirmRequired):
		return helper.JsonError(c, fiber.StatusBadRequest, "Kirim ulang dengan confirm=true untuk finalisasi")
	case errors.Is(err, applicationService.ErrAlreadySubmitted):
		return helper.JsonError(c, fiber.StatusConflict, "Pendaftaran sudah dikirim")
	case errors.Is(err, applicationService.ErrTrackClosed):
		return helper.JsonError(c, fiber.StatusForbidden, "Jalur pendaftaran sedang ditutup")
	case errors.Is(err, applicationService.ErrPaymentRequired):
		return helper.JsonError(c, fiber.StatusPaymentRequired, "Biaya pendaftaran belum dibayar")
	case errors.Is(err, applicationService.ErrInvalidTrack), errors.Is(err, applicationService.ErrNotSubmitted):
		return helper.JsonError(c, fiber.StatusBadRequest, "Lengkapi formulir dan pilih jalur terlebih dahulu")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengirim pendaftaran")
	}

	return helper.JsonOK(c, "Pendaftaran berhasil dikirim", dto.NewApplicationResponse(a))
}

// Pay: buat token Snap untuk biaya pendaftaran.
func (ctl *ApplicationController) Pay(c *fiber.Ctx) error {
	if ctl.FeeAmountIDR <= 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Pendaftaran tidak dikenakan biaya")
	}
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	uid, err := ownerID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	a, err := ctl.Service.GetOrCreate(uid, school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	if a.PaymentStatus == applicationModel.PaymentPaid {
		return helper.JsonError(c, fiber.StatusConflict, "Biaya pendaftaran sudah dibayar")
	}

	var u userModel.UserModel
	if err := ctl.DB.First(&u, "id = ?", uid).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data akun")
	}

	token, err := applicationService.GenerateRegistrationFeeToken(ctl.DB, a, u.UserName, u.Email, ctl.FeeAmountIDR)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadGateway, "Gagal membuat transaksi pembayaran")
	}
	return helper.JsonOK(c, "Token pembayaran dibuat", fiber.Map{
		"snap_token": token,
		"order_id":   a.PaymentOrderID,
		"amount":     ctl.FeeAmountIDR,
	})
}

// HandlePaymentWebhook: endpoint publik notifikasi Midtrans.
func (ctl *ApplicationController) HandlePaymentWebhook(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := applicationService.HandlePaymentWebhook(ctl.DB, body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Webhook gagal diproses")
	}
	return helper.JsonOK(c, "Webhook diproses", nil)
}
