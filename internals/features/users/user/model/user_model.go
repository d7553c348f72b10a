package model

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
)

// Validator instance
var validate = validator.New()

// UserModel merepresentasikan tabel users
type UserModel struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName string    `gorm:"size:50;not null" json:"user_name" validate:"required,min=3,max=50"`
	Email    string    `gorm:"size:255;unique;not null" json:"email" validate:"required,email"`
	Password string    `gorm:"not null" json:"-" validate:"required,min=8"`
	GoogleID *string   `gorm:"size:255;unique" json:"google_id,omitempty"`
	Role     string    `gorm:"type:varchar(20);not null;default:'applicant'" json:"role" validate:"omitempty,oneof=applicant admin"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserModel) TableName() string {
	return "users"
}

// SetDefaultValues memastikan nilai default sebelum validasi
func (u *UserModel) SetDefaultValues() {
	if u.Role == "" {
		u.Role = constants.RoleApplicant
	}
}

// Validate memeriksa apakah input sesuai aturan yang telah didefinisikan
func (u *UserModel) Validate() error {
	u.SetDefaultValues()

	if err := validate.Struct(u); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func (u *UserModel) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// formatValidationError mengubah error validasi menjadi pesan yang jelas
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			msgs = append(msgs, fieldErr.Field()+" wajib diisi.")
		case "email":
			msgs = append(msgs, "Format email tidak valid.")
		case "min":
			msgs = append(msgs, fieldErr.Field()+" harus minimal "+fieldErr.Param()+" karakter.")
		case "max":
			msgs = append(msgs, fieldErr.Field()+" harus kurang dari "+fieldErr.Param()+" karakter.")
		case "oneof":
			msgs = append(msgs, fieldErr.Field()+" harus salah satu dari "+fieldErr.Param()+".")
		default:
			msgs = append(msgs, fieldErr.Field()+" format tidak valid.")
		}
	}
	return errors.New(strings.Join(msgs, " "))
}
