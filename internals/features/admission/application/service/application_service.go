package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/admission/application/dto"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	"ppdb_backend/internals/features/admission/application/validation"
	settingsModel "ppdb_backend/internals/features/admission/settings/model"
)

var (
	ErrAlreadySubmitted    = errors.New("pendaftaran sudah dikirim dan tidak bisa diubah")
	ErrTrackClosed         = errors.New("jalur pendaftaran sedang ditutup")
	ErrSwitchNeedsConfirm  = errors.New("ganti jalur menghapus nilai dan rapor; perlu konfirmasi")
	ErrPaymentRequired     = errors.New("biaya pendaftaran belum dibayar")
	ErrValidationFailed    = errors.New("formulir belum memenuhi syarat")
	ErrNotSubmitted        = errors.New("pendaftaran belum berstatus submitted")
	ErrInvalidTrack        = errors.New("jalur pendaftaran tidak dikenal")
	ErrConfirmRequired     = errors.New("submit butuh konfirmasi eksplisit")
)

// SettingsLoader membaca konfigurasi jalur yang berlaku untuk satu sekolah.
type SettingsLoader interface {
	LoadForSchool(school string) (*settingsModel.AdmissionSettings, error)
}

// Store: kontrak persistensi yang dibutuhkan service. Implementasi produksi
// ada di repository.ApplicationRepository (GORM/PostgreSQL).
type Store interface {
	FindByOwner(ownerID uuid.UUID, school string) (*applicationModel.Application, error)
	FindByID(id uuid.UUID) (*applicationModel.Application, error)
	Create(a *applicationModel.Application) error
	Save(a *applicationModel.Application) error
	IsNIKTaken(school, nik string, excludeOwner uuid.UUID) bool
}

type ApplicationService struct {
	Repo     Store
	Settings SettingsLoader

	// RequireFee: submit butuh biaya pendaftaran lunas.
	RequireFee bool
}

func NewApplicationService(repo Store, settings SettingsLoader, requireFee bool) *ApplicationService {
	return &ApplicationService{Repo: repo, Settings: settings, RequireFee: requireFee}
}

// GetOrCreate: ambil draft milik user, buat baru kalau belum ada.
func (s *ApplicationService) GetOrCreate(ownerID uuid.UUID, school string) (*applicationModel.Application, error) {
	a, err := s.Repo.FindByOwner(ownerID, school)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	a = &applicationModel.Application{
		OwnerID: ownerID,
		School:  school,
		Status:  applicationModel.StatusDraft,
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveDraft: autosave. Konten tidak divalidasi — draft setengah jadi sah;
// yang dijaga hanya: tidak boleh setelah submit, jalur (kalau diisi) dikenal,
// dan ganti jalur dengan data terisi butuh konfirmasi eksplisit. Payload tanpa
// track berarti jalur tidak berubah. Pembersihan nilai/rapor dijalankan
// SETELAH payload disalin supaya nilai lama tidak ikut terbawa dari client.
func (s *ApplicationService) SaveDraft(ownerID uuid.UUID, school string, req *dto.SaveDraftRequest) (*applicationModel.Application, error) {
	a, err := s.GetOrCreate(ownerID, school)
	if err != nil {
		return nil, err
	}
	if a.IsSubmitted() {
		return nil, ErrAlreadySubmitted
	}

	if req.Track == "" {
		req.Track = a.Track
	}
	if req.Track != "" && !constants.IsValidTrack(req.Track) {
		return nil, ErrInvalidTrack
	}

	oldTrack := a.Track
	switching := oldTrack != "" && req.Track != oldTrack
	if switching && validation.NeedsSwitchConfirmation(a) && !req.ConfirmTrackSwitch {
		return nil, ErrSwitchNeedsConfirm
	}

	req.Apply(a)
	if switching {
		validation.ApplySwitchPlan(a, validation.TrackSwitchPlan(oldTrack, req.Track))
	}

	if err := s.Repo.Save(a); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckNIK: cek ringan untuk feedback langsung di form. Format dulu; cek
// duplikasi hanya untuk NIK yang formatnya valid.
func (s *ApplicationService) CheckNIK(ownerID uuid.UUID, school, nik string) (valid, duplicate bool, message string) {
	if err := validation.ValidateNIK(nik); err != nil {
		return false, false, err.Error()
	}
	if !validation.NeedsDuplicateCheck(nik) {
		return true, false, ""
	}
	if s.Repo.IsNIKTaken(school, nik, ownerID) {
		return true, true, "NIK sudah terdaftar pada pendaftaran lain di sekolah ini"
	}
	return true, false, ""
}

// Submit: jalankan seluruh mesin validasi lalu kunci pendaftaran.
// Mengembalikan hasil validasi kalau gagal syarat (err == ErrValidationFailed).
func (s *ApplicationService) Submit(ownerID uuid.UUID, school string, req *dto.SubmitRequest) (*applicationModel.Application, *validation.Result, error) {
	if !req.Confirm {
		return nil, nil, ErrConfirmRequired
	}

	a, err := s.Repo.FindByOwner(ownerID, school)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, ErrNotSubmitted
	}
	if a.IsSubmitted() {
		return nil, nil, ErrAlreadySubmitted
	}
	if !constants.IsValidTrack(a.Track) {
		return nil, nil, ErrInvalidTrack
	}

	settings, err := s.Settings.LoadForSchool(school)
	if err != nil {
		return nil, nil, err
	}
	ts := settings.Track(a.Track)
	if ts == nil || !ts.IsOpen(time.Now()) {
		return nil, nil, ErrTrackClosed
	}

	if s.RequireFee && a.PaymentStatus != applicationModel.PaymentPaid {
		return nil, nil, ErrPaymentRequired
	}

	pending := map[string]bool{}
	for _, slot := range req.PendingSlots {
		pending[slot] = true
	}

	rules := validation.RulesFor(a.Track, settings)
	duplicate := validation.NeedsDuplicateCheck(a.NIK) && s.Repo.IsNIKTaken(school, a.NIK, ownerID)
	res := validation.Evaluate(a, rules, duplicate, pending)
	if !res.Ok() {
		return a, res, ErrValidationFailed
	}

	now := time.Now()
	a.Status = applicationModel.StatusSubmitted
	a.SubmittedAt = &now
	if err := s.Repo.Save(a); err != nil {
		return nil, nil, err
	}
	return a, nil, nil
}

// Decide: keputusan admin atas pendaftaran submitted.
func (s *ApplicationService) Decide(id, adminID uuid.UUID, decision, reason string) (*applicationModel.Application, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !a.IsSubmitted() {
		return nil, ErrNotSubmitted
	}

	now := time.Now()
	a.Decision = &decision
	a.DecidedBy = &adminID
	a.DecidedAt = &now
	if decision == applicationModel.DecisionRejected {
		a.RejectReason = &reason
	} else {
		a.RejectReason = nil
	}
	if err := s.Repo.Save(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ResetToDraft: admin mengembalikan pendaftaran submitted ke draft supaya
// pendaftar bisa memperbaiki isian. Keputusan lama ikut dihapus.
func (s *ApplicationService) ResetToDraft(id uuid.UUID) (*applicationModel.Application, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !a.IsSubmitted() {
		return nil, ErrNotSubmitted
	}

	a.Status = applicationModel.StatusDraft
	a.SubmittedAt = nil
	a.Decision = nil
	a.RejectReason = nil
	a.DecidedBy = nil
	a.DecidedAt = nil
	if err := s.Repo.Save(a); err != nil {
		return nil, err
	}
	return a, nil
}
