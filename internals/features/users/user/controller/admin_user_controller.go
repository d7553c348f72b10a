package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "ppdb_backend/internals/features/users/auth/helper"
	"ppdb_backend/internals/features/users/user/dto"
	userModel "ppdb_backend/internals/features/users/user/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = validator.New()

// AdminUserController: manajemen akun oleh admin (lihat, ubah role,
// aktif/nonaktifkan).
type AdminUserController struct {
	DB *gorm.DB
}

func NewAdminUserController(db *gorm.DB) *AdminUserController {
	return &AdminUserController{DB: db}
}

func (ctl *AdminUserController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.Model(&userModel.UserModel{})
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(user_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil daftar user")
	}

	var users []userModel.UserModel
	if err := q.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset).Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil daftar user")
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return helper.JsonList(c, "Daftar user", items, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// byID mengembalikan *fiber.Error supaya caller tidak pernah menerima
// (nil, nil); response JSON dirakit caller lewat httpError.
func (ctl *AdminUserController) byID(c *fiber.Ctx) (*userModel.UserModel, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID user tidak valid")
	}
	var u userModel.UserModel
	if err := ctl.DB.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil user")
	}
	return &u, nil
}

func httpError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan")
}

func (ctl *AdminUserController) Detail(c *fiber.Ctx) error {
	u, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}
	return helper.JsonOK(c, "Detail user", dto.NewUserResponse(u))
}

func (ctl *AdminUserController) Update(c *fiber.Ctx) error {
	u, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Payload tidak valid")
	}

	if req.UserName != nil {
		u.UserName = strings.TrimSpace(*req.UserName)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := ctl.DB.Save(u).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan user")
	}
	return helper.JsonUpdated(c, "User diperbarui", dto.NewUserResponse(u))
}

// Create: buat akun dari panel admin, umumnya untuk menambah admin baru.
func (ctl *AdminUserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Payload tidak valid")
	}

	hashed, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}

	u := userModel.UserModel{
		UserName: strings.TrimSpace(req.UserName),
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: hashed,
		Role:     req.Role,
		IsActive: true,
	}
	if err := u.Validate(); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := ctl.DB.Create(&u).Error; err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "duplicate key") || strings.Contains(low, "unique") {
			return helper.JsonError(c, fiber.StatusConflict, "Email sudah terdaftar")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat akun")
	}
	return helper.JsonCreated(c, "Akun dibuat", dto.NewUserResponse(&u))
}

// ResetPassword: ganti password akun oleh admin.
func (ctl *AdminUserController) ResetPassword(c *fiber.Ctx) error {
	u, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}

	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Password baru minimal 8 karakter")
	}

	hashed, err := authHelper.HashPassword(req.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}
	if err := ctl.DB.Model(u).Update("password", hashed).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan password")
	}
	return helper.JsonUpdated(c, "Password di-reset", fiber.Map{"id": u.ID})
}

func (ctl *AdminUserController) Delete(c *fiber.Ctx) error {
	u, err := ctl.byID(c)
	if err != nil {
		return httpError(c, err)
	}
	if err := ctl.DB.Delete(u).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus user")
	}
	return helper.JsonDeleted(c, "User dihapus", fiber.Map{"id": u.ID})
}
