package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	applicationModel "ppdb_backend/internals/features/admission/application/model"
)

// SaveDraftRequest: autosave formulir. Semua field opsional — draft boleh
// setengah jadi; validasi penuh baru jalan saat submit.
type SaveDraftRequest struct {
	Track string `json:"track"`

	FullName           string `json:"full_name"`
	NIK                string `json:"nik"`
	NISN               string `json:"nisn"`
	BirthPlace         string `json:"birth_place"`
	BirthDate          string `json:"birth_date"`
	Gender             string `json:"gender"`
	Religion           string `json:"religion"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	PriorSchool        string `json:"prior_school"`
	PriorSchoolAddress string `json:"prior_school_address"`

	FatherName    string `json:"father_name"`
	FatherJob     string `json:"father_job"`
	MotherName    string `json:"mother_name"`
	MotherJob     string `json:"mother_job"`
	GuardianPhone string `json:"guardian_phone"`

	Scores map[string]interface{} `json:"scores"`

	// ConfirmTrackSwitch wajib true kalau Track berbeda dari draft tersimpan
	// dan sudah ada nilai/rapor terisi (pindah jalur membersihkan keduanya).
	ConfirmTrackSwitch bool `json:"confirm_track_switch"`
}

// Apply menyalin payload ke draft. Scores diganti utuh (client mengirim map
// lengkap tiap autosave), dokumen tidak disentuh dari sini.
func (r *SaveDraftRequest) Apply(a *applicationModel.Application) {
	a.Track = r.Track

	a.FullName = r.FullName
	a.NIK = r.NIK
	a.NISN = r.NISN
	a.BirthPlace = r.BirthPlace
	a.BirthDate = r.BirthDate
	a.Gender = r.Gender
	a.Religion = r.Religion
	a.Address = r.Address
	a.Phone = r.Phone
	a.PriorSchool = r.PriorSchool
	a.PriorSchoolAddress = r.PriorSchoolAddress

	a.FatherName = r.FatherName
	a.FatherJob = r.FatherJob
	a.MotherName = r.MotherName
	a.MotherJob = r.MotherJob
	a.GuardianPhone = r.GuardianPhone

	if r.Scores != nil {
		a.Scores = datatypes.JSONMap(r.Scores)
	}
}

// SubmitRequest: finalisasi pendaftaran. Confirm wajib true — submit bersifat
// final dan client menampilkan dialog konfirmasi dulu. PendingSlots: slot
// dokumen yang filenya sudah dipilih di client tapi uploadnya masih berjalan.
type SubmitRequest struct {
	Confirm      bool     `json:"confirm"`
	PendingSlots []string `json:"pending_slots"`
}

type CheckNIKRequest struct {
	NIK string `json:"nik" validate:"required"`
	// Seq: token monotonic dari client supaya balasan cek yang datang
	// terlambat bisa diabaikan.
	Seq int64 `json:"seq"`
}

type CheckNIKResponse struct {
	Seq       int64  `json:"seq"`
	Valid     bool   `json:"valid"`
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message,omitempty"`
}

// ApplicationResponse: bentuk lengkap untuk pemilik & admin detail.
type ApplicationResponse struct {
	ID     uuid.UUID `json:"id"`
	School string    `json:"school"`
	Track  string    `json:"track"`

	FullName           string `json:"full_name"`
	NIK                string `json:"nik"`
	NISN               string `json:"nisn"`
	BirthPlace         string `json:"birth_place"`
	BirthDate          string `json:"birth_date"`
	Gender             string `json:"gender"`
	Religion           string `json:"religion"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	PriorSchool        string `json:"prior_school"`
	PriorSchoolAddress string `json:"prior_school_address"`

	FatherName    string `json:"father_name"`
	FatherJob     string `json:"father_job"`
	MotherName    string `json:"mother_name"`
	MotherJob     string `json:"mother_job"`
	GuardianPhone string `json:"guardian_phone"`

	Scores    map[string]interface{} `json:"scores"`
	Documents map[string]interface{} `json:"documents"`

	Status       string     `json:"status"`
	Decision     *string    `json:"decision,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`

	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewApplicationResponse(a *applicationModel.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:     a.ID,
		School: a.School,
		Track:  a.Track,

		FullName:           a.FullName,
		NIK:                a.NIK,
		NISN:               a.NISN,
		BirthPlace:         a.BirthPlace,
		BirthDate:          a.BirthDate,
		Gender:             a.Gender,
		Religion:           a.Religion,
		Address:            a.Address,
		Phone:              a.Phone,
		PriorSchool:        a.PriorSchool,
		PriorSchoolAddress: a.PriorSchoolAddress,

		FatherName:    a.FatherName,
		FatherJob:     a.FatherJob,
		MotherName:    a.MotherName,
		MotherJob:     a.MotherJob,
		GuardianPhone: a.GuardianPhone,

		Scores:    a.Scores,
		Documents: a.Documents,

		Status:       a.Status,
		Decision:     a.Decision,
		RejectReason: a.RejectReason,

		PaymentStatus: a.PaymentStatus,
		PaidAt:        a.PaidAt,

		SubmittedAt: a.SubmittedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ApplicationSummary: baris ringkas untuk daftar admin.
type ApplicationSummary struct {
	ID            uuid.UUID  `json:"id"`
	School        string     `json:"school"`
	Track         string     `json:"track"`
	FullName      string     `json:"full_name"`
	NIK           string     `json:"nik"`
	PriorSchool   string     `json:"prior_school"`
	Status        string     `json:"status"`
	Decision      *string    `json:"decision,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
}

func NewApplicationSummary(a *applicationModel.Application) ApplicationSummary {
	return ApplicationSummary{
		ID:            a.ID,
		School:        a.School,
		Track:         a.Track,
		FullName:      a.FullName,
		NIK:           a.NIK,
		PriorSchool:   a.PriorSchool,
		Status:        a.Status,
		Decision:      a.Decision,
		PaymentStatus: a.PaymentStatus,
		SubmittedAt:   a.SubmittedAt,
	}
}

type DecisionRequest struct {
	// Reason wajib untuk penolakan, diabaikan untuk penerimaan.
	Reason string `json:"reason"`
}
