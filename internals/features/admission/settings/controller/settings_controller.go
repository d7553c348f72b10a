package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/admission/settings/dto"
	settingsModel "ppdb_backend/internals/features/admission/settings/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = validator.New()

type SettingsController struct {
	DB *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

// tahun ajaran berjalan, mis. "2026/2027" (tahun ajaran baru mulai Juli)
func currentAcademicYear(now time.Time) string {
	year := now.Year()
	if now.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d/%d", year, year+1)
}

func (sc *SettingsController) load(school string) (*settingsModel.AdmissionSettings, error) {
	year := currentAcademicYear(time.Now())

	var s settingsModel.AdmissionSettings
	err := sc.DB.
		Where("school = ? AND academic_year = ?", school, year).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settingsModel.DefaultSettings(school, year), nil
		}
		return nil, err
	}
	s.FillDefaults()
	return &s, nil
}

// Get: pengaturan jalur untuk halaman publik. Belum pernah disimpan admin →
// balikan nilai default (semua jalur disabled).
func (sc *SettingsController) Get(c *fiber.Ctx) error {
	school := c.Params("school")
	if !constants.IsValidSchool(school) {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	s, err := sc.load(school)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pengaturan")
	}
	return helper.JsonOK(c, "Pengaturan jalur", dto.NewSettingsResponse(s, time.Now()))
}

// Update: simpan pengaturan jalur (admin). Payload typed per jalur; field
// opsional yang kosong diisi default lewat FillDefaults, bukan merge ad hoc.
func (sc *SettingsController) Update(c *fiber.Ctx) error {
	school := c.Params("school")
	if !constants.IsValidSchool(school) {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}

	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Payload pengaturan tidak valid")
	}

	s := settingsModel.AdmissionSettings{
		School:       school,
		AcademicYear: req.AcademicYear,
	}
	req.Prestasi.Apply(&s.Prestasi)
	req.Reguler.Apply(&s.Reguler)
	req.Undangan.Apply(&s.Undangan)
	s.FillDefaults()

	// singleton per (sekolah, tahun ajaran); tulisan terakhir menang
	if err := sc.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "school"}, {Name: "academic_year"}},
		UpdateAll: true,
	}).Create(&s).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan pengaturan")
	}

	return helper.JsonUpdated(c, "Pengaturan jalur disimpan", dto.NewSettingsResponse(&s, time.Now()))
}

// LoadForSchool dipakai service lain (submit, validasi) untuk membaca
// konfigurasi jalur yang sedang berlaku.
func (sc *SettingsController) LoadForSchool(school string) (*settingsModel.AdmissionSettings, error) {
	return sc.load(school)
}
