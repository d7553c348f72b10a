package controller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/admission/application/dto"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	applicationRepo "ppdb_backend/internals/features/admission/application/repository"
	applicationService "ppdb_backend/internals/features/admission/application/service"
	"ppdb_backend/internals/features/admission/application/validation"
	helper "ppdb_backend/internals/helpers"
	middleware "ppdb_backend/internals/middlewares/auth"
)

type AdminApplicationController struct {
	Service *applicationService.ApplicationService
	Repo    *applicationRepo.ApplicationRepository
}

func NewAdminApplicationController(svc *applicationService.ApplicationService, repo *applicationRepo.ApplicationRepository) *AdminApplicationController {
	return &AdminApplicationController{Service: svc, Repo: repo}
}

func (ctl *AdminApplicationController) listFilter(c *fiber.Ctx, school string) applicationRepo.ListFilter {
	return applicationRepo.ListFilter{
		School:   school,
		Track:    c.Query("track"),
		Status:   c.Query("status"),
		Decision: c.Query("decision"),
		Search:   c.Query("q"),
	}
}

// List: daftar pendaftaran satu sekolah, filter jalur/status/keputusan + cari.
func (ctl *AdminApplicationController) List(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	p := helper.ResolvePaging(c, 20, 100)
	f := ctl.listFilter(c, school)
	f.Limit = p.Limit
	f.Offset = p.Offset

	rows, total, err := ctl.Repo.List(f)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil daftar pendaftaran")
	}

	items := make([]dto.ApplicationSummary, 0, len(rows))
	for i := range rows {
		items = append(items, dto.NewApplicationSummary(&rows[i]))
	}
	return helper.JsonList(c, "Daftar pendaftaran", items, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// Stats: rekap jumlah pendaftaran per status.
func (ctl *AdminApplicationController) Stats(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	counts, err := ctl.Repo.CountByStatus(school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil rekap")
	}
	return helper.JsonOK(c, "Rekap pendaftaran", counts)
}

// byID mengembalikan *fiber.Error supaya caller tidak pernah menerima
// (nil, nil); response JSON dirakit caller lewat httpError.
func (ctl *AdminApplicationController) byID(c *fiber.Ctx) (*applicationModel.Application, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID pendaftaran tidak valid")
	}
	a, err := ctl.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pendaftaran tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	return a, nil
}

func httpError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan")
}

func (ctl *AdminApplicationController) Detail(c *fiber.Ctx) error {
	a, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}
	return helper.JsonOK(c, "Detail pendaftaran", dto.NewApplicationResponse(a))
}

func adminID(c *fiber.Ctx) uuid.UUID {
	raw, _ := c.Locals(middleware.LocUserID).(string)
	id, _ := uuid.Parse(raw)
	return id
}

func (ctl *AdminApplicationController) decide(c *fiber.Ctx, decision string) error {
	a, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}

	var req dto.DecisionRequest
	_ = c.BodyParser(&req)
	if decision == applicationModel.DecisionRejected && strings.TrimSpace(req.Reason) == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Alasan penolakan wajib diisi")
	}

	updated, err := ctl.Service.Decide(a.ID, adminID(c), decision, req.Reason)
	switch {
	case errors.Is(err, applicationService.ErrNotSubmitted):
		return helper.JsonError(c, fiber.StatusConflict, "Hanya pendaftaran berstatus submitted yang bisa diputuskan")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan keputusan")
	}
	return helper.JsonUpdated(c, "Keputusan disimpan", dto.NewApplicationResponse(updated))
}

func (ctl *AdminApplicationController) Accept(c *fiber.Ctx) error {
	return ctl.decide(c, applicationModel.DecisionAccepted)
}

func (ctl *AdminApplicationController) Reject(c *fiber.Ctx) error {
	return ctl.decide(c, applicationModel.DecisionRejected)
}

// Reset: kembalikan submitted → draft supaya pendaftar bisa memperbaiki.
func (ctl *AdminApplicationController) Reset(c *fiber.Ctx) error {
	a, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}

	updated, err := ctl.Service.ResetToDraft(a.ID)
	switch {
	case errors.Is(err, applicationService.ErrNotSubmitted):
		return helper.JsonError(c, fiber.StatusConflict, "Hanya pendaftaran berstatus submitted yang bisa di-reset")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal me-reset pendaftaran")
	}
	return helper.JsonUpdated(c, "Pendaftaran dikembalikan ke draft", dto.NewApplicationResponse(updated))
}

func (ctl *AdminApplicationController) Delete(c *fiber.Ctx) error {
	a, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}
	if err := ctl.Repo.Delete(a); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus pendaftaran")
	}
	return helper.JsonDeleted(c, "Pendaftaran dihapus", fiber.Map{"id": a.ID})
}

// ExportCSV: unduh rekap pendaftaran sesuai filter. Kolom nilai mengikuti
// semester terlengkap (2-4) supaya header seragam lintas jalur.
func (ctl *AdminApplicationController) ExportCSV(c *fiber.Ctx) error {
	school, ok := schoolParam(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	rows, err := ctl.Repo.ListAllForExport(ctl.listFilter(c, school))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengekspor data")
	}

	exportSemesters := []int{2, 3, 4}
	header := []string{
		"nama_lengkap", "nik", "nisn", "jalur", "status", "keputusan",
		"asal_sekolah", "no_hp", "status_bayar", "tanggal_submit",
	}
	for _, subj := range validation.Subjects {
		for _, sem := range exportSemesters {
			header = append(header, validation.ScoreKey(subj.Key, sem))
		}
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(header)

	for i := range rows {
		a := &rows[i]
		decision := ""
		if a.Decision != nil {
			decision = *a.Decision
		}
		submitted := ""
		if a.SubmittedAt != nil {
			submitted = a.SubmittedAt.Format(time.RFC3339)
		}

		rec := []string{
			a.FullName, a.NIK, a.NISN, a.Track, a.Status, decision,
			a.PriorSchool, a.Phone, a.PaymentStatus, submitted,
		}
		for _, subj := range validation.Subjects {
			for _, sem := range exportSemesters {
				val := ""
				if a.Scores != nil {
					if v, ok := a.Scores[validation.ScoreKey(subj.Key, sem)]; ok && v != nil {
						val = fmt.Sprintf("%v", v)
					}
				}
				rec = append(rec, val)
			}
		}
		_ = w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menulis CSV")
	}

	filename := fmt.Sprintf("ppdb_%s_%s.csv", school, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendString(sb.String())
}
