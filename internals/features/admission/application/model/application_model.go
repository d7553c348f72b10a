package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"

	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"

	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentExpired  = "expired"
	PaymentCanceled = "canceled"
)

// Application: satu pendaftaran per (pemilik, sekolah). Konten milik pendaftar
// sampai submitted; setelah itu hanya admin yang boleh mengubah keputusan atau
// me-reset kembali ke draft.
type Application struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_applications_owner_school" json:"owner_id"`
	School  string    `gorm:"column:school;type:varchar(10);not null;uniqueIndex:idx_applications_owner_school" json:"school"`
	Track   string    `gorm:"column:track;type:varchar(20)" json:"track"`

	// ===== Data siswa =====
	FullName           string `gorm:"column:full_name;size:100" json:"full_name"`
	NIK                string `gorm:"column:nik;size:16;index" json:"nik"`
	NISN               string `gorm:"column:nisn;size:20" json:"nisn"`
	BirthPlace         string `gorm:"column:birth_place;size:100" json:"birth_place"`
	BirthDate          string `gorm:"column:birth_date;size:20" json:"birth_date"`
	Gender             string `gorm:"column:gender;size:20" json:"gender"`
	Religion           string `gorm:"column:religion;size:30" json:"religion"`
	Address            string `gorm:"column:address;type:text" json:"address"`
	Phone              string `gorm:"column:phone;size:20" json:"phone"`
	PriorSchool        string `gorm:"column:prior_school;size:150" json:"prior_school"`
	PriorSchoolAddress string `gorm:"column:prior_school_address;type:text" json:"prior_school_address"`

	// ===== Data orang tua =====
	FatherName    string `gorm:"column:father_name;size:100" json:"father_name"`
	FatherJob     string `gorm:"column:father_job;size:100" json:"father_job"`
	MotherName    string `gorm:"column:mother_name;size:100" json:"mother_name"`
	MotherJob     string `gorm:"column:mother_job;size:100" json:"mother_job"`
	GuardianPhone string `gorm:"column:guardian_phone;size:20" json:"guardian_phone"`

	// Nilai rapor per (mapel × semester), key "mapel_semester" mis. "matematika_3"
	Scores datatypes.JSONMap `gorm:"column:scores;type:jsonb" json:"scores"`

	// URL dokumen terunggah per slot: pas_foto, sertifikat, rapor_2..rapor_4
	Documents datatypes.JSONMap `gorm:"column:documents;type:jsonb" json:"documents"`

	// ===== Status & keputusan =====
	Status       string     `gorm:"column:status;type:varchar(12);not null;default:'draft';index" json:"status"`
	Decision     *string    `gorm:"column:decision;type:varchar(12)" json:"decision,omitempty"`
	RejectReason *string    `gorm:"column:reject_reason;type:text" json:"reject_reason,omitempty"`
	DecidedBy    *uuid.UUID `gorm:"column:decided_by;type:uuid" json:"decided_by,omitempty"`
	DecidedAt    *time.Time `gorm:"column:decided_at;type:timestamptz" json:"decided_at,omitempty"`

	// ===== Biaya pendaftaran =====
	PaymentOrderID *string    `gorm:"column:payment_order_id;size:64;index" json:"payment_order_id,omitempty"`
	PaymentStatus  string     `gorm:"column:payment_status;type:varchar(12);not null;default:'unpaid'" json:"payment_status"`
	PaidAt         *time.Time `gorm:"column:paid_at;type:timestamptz" json:"paid_at,omitempty"`

	SubmittedAt *time.Time     `gorm:"column:submitted_at;type:timestamptz" json:"submitted_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) IsSubmitted() bool {
	return a.Status == StatusSubmitted
}

// DocumentURL: URL slot dokumen; string kosong kalau slot belum terisi.
func (a *Application) DocumentURL(slot string) string {
	if a.Documents == nil {
		return ""
	}
	if v, ok := a.Documents[slot]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (a *Application) SetDocumentURL(slot, url string) {
	if a.Documents == nil {
		a.Documents = datatypes.JSONMap{}
	}
	a.Documents[slot] = url
}

func (a *Application) ClearDocument(slot string) {
	if a.Documents == nil {
		return
	}
	delete(a.Documents, slot)
}
