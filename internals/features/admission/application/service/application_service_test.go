package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/admission/application/dto"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	"ppdb_backend/internals/features/admission/application/validation"
	settingsModel "ppdb_backend/internals/features/admission/settings/model"
)

// fakeStore: store in-memory dengan semantik query yang sama dengan
// repository produksi — IsNIKTaken hanya melihat baris submitted di sekolah
// yang sama dan tidak menghitung baris milik pemohon sendiri.
type fakeStore struct {
	rows []*applicationModel.Application
}

func (f *fakeStore) FindByOwner(ownerID uuid.UUID, school string) (*applicationModel.Application, error) {
	for _, a := range f.rows {
		if a.OwnerID == ownerID && a.School == school {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByID(id uuid.UUID) (*applicationModel.Application, error) {
	for _, a := range f.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("pendaftaran tidak ditemukan")
}

func (f *fakeStore) Create(a *applicationModel.Application) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeStore) Save(a *applicationModel.Application) error { return nil }

func (f *fakeStore) IsNIKTaken(school, nik string, excludeOwner uuid.UUID) bool {
	for _, a := range f.rows {
		if a.School == school &&
			a.NIK == nik &&
			a.Status == applicationModel.StatusSubmitted &&
			a.OwnerID != excludeOwner {
			return true
		}
	}
	return false
}

// fakeSettings: semua jalur dibuka tanpa jendela tanggal.
type fakeSettings struct{}

func (fakeSettings) LoadForSchool(school string) (*settingsModel.AdmissionSettings, error) {
	s := settingsModel.DefaultSettings(school, "2026/2027")
	s.Prestasi.Enabled = true
	s.Reguler.Enabled = true
	s.Undangan.Enabled = true
	return s, nil
}

func newTestService(store *fakeStore) *ApplicationService {
	return NewApplicationService(store, fakeSettings{}, false)
}

// completeDraft: draft yang lolos seluruh syarat submit untuk satu jalur.
func completeDraft(ownerID uuid.UUID, school, track, nik string) *applicationModel.Application {
	a := &applicationModel.Application{
		ID:      uuid.New(),
		OwnerID: ownerID,
		School:  school,
		Track:   track,
		Status:  applicationModel.StatusDraft,

		FullName:           "Siti Rahma",
		NIK:                nik,
		NISN:               "0051234567",
		BirthPlace:         "Bandung",
		BirthDate:          "2010-04-12",
		Gender:             "perempuan",
		Religion:           "islam",
		Address:            "Jl. Melati No. 5",
		Phone:              "081234567890",
		PriorSchool:        "SMP Negeri 1 Bandung",
		PriorSchoolAddress: "Jl. Merdeka No. 2",

		FatherName:    "Budi Santoso",
		FatherJob:     "Wiraswasta",
		MotherName:    "Ani Lestari",
		MotherJob:     "Guru",
		GuardianPhone: "081298765432",

		Scores:    datatypes.JSONMap{},
		Documents: datatypes.JSONMap{},
	}
	for _, subj := range validation.Subjects {
		for _, sem := range validation.RequiredSemesters(track) {
			a.Scores[validation.ScoreKey(subj.Key, sem)] = 90.0
		}
	}
	a.SetDocumentURL(validation.DocSlotPhoto, "https://oss.example/pas_foto.jpg")
	a.SetDocumentURL(validation.DocSlotCertificate, "https://oss.example/sertifikat.pdf")
	for _, sem := range validation.RequiredSemesters(track) {
		a.SetDocumentURL(validation.DocSlotReportCard(sem), "https://oss.example/rapor.pdf")
	}
	return a
}

// Setelah submit pendaftaran terkunci: autosave apa pun harus ditolak.
func TestSaveDraftRefusedAfterSubmit(t *testing.T) {
	owner := uuid.New()
	a := completeDraft(owner, "smp", constants.TrackReguler, "3201234567890001")
	now := time.Now()
	a.Status = applicationModel.StatusSubmitted
	a.SubmittedAt = &now

	svc := newTestService(&fakeStore{rows: []*applicationModel.Application{a}})

	_, err := svc.SaveDraft(owner, "smp", &dto.SaveDraftRequest{FullName: "Nama Baru"})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, mau ErrAlreadySubmitted", err)
	}
	if a.FullName != "Siti Rahma" {
		t.Errorf("draft berubah setelah submit: FullName = %q", a.FullName)
	}
}

// Duplikasi NIK hanya menghitung baris submitted di sekolah yang sama;
// draft lain dan sekolah lain tidak memblokir.
func TestSubmitNIKDuplicateScope(t *testing.T) {
	const nik = "3201234567890001"

	cases := []struct {
		name        string
		otherSchool string
		otherStatus string
		wantBlocked bool
	}{
		{"submitted satu sekolah memblokir", "smp", applicationModel.StatusSubmitted, true},
		{"draft satu sekolah tidak memblokir", "smp", applicationModel.StatusDraft, false},
		{"submitted sekolah lain tidak memblokir", "sma", applicationModel.StatusSubmitted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owner := uuid.New()
			mine := completeDraft(owner, "smp", constants.TrackReguler, nik)

			other := completeDraft(uuid.New(), tc.otherSchool, constants.TrackReguler, nik)
			other.Status = tc.otherStatus
			if tc.otherStatus == applicationModel.StatusSubmitted {
				now := time.Now()
				other.SubmittedAt = &now
			}

			svc := newTestService(&fakeStore{rows: []*applicationModel.Application{mine, other}})

			a, res, err := svc.Submit(owner, "smp", &dto.SubmitRequest{Confirm: true})
			if tc.wantBlocked {
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("err = %v, mau ErrValidationFailed", err)
				}
				if res == nil || res.Message(validation.CategoryNIKDuplicate) == "" {
					t.Fatalf("pesan kategori nik-duplicate kosong: %+v", res)
				}
				if a.IsSubmitted() {
					t.Errorf("pendaftaran ikut tersubmit padahal NIK duplikat")
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v, mau nil", err)
			}
			if !a.IsSubmitted() || a.SubmittedAt == nil {
				t.Errorf("pendaftaran belum terkunci: status = %q", a.Status)
			}
		})
	}
}

// Pindah jalur membersihkan nilai SETELAH payload disalin — nilai lama yang
// ikut terkirim dari client tidak boleh selamat. Slot rapor di luar irisan
// semester ikut dibersihkan; sertifikat dan pas foto tidak pernah disentuh.
func TestSaveDraftTrackSwitchClearsScores(t *testing.T) {
	owner := uuid.New()
	a := completeDraft(owner, "smp", constants.TrackPrestasi, "3201234567890001")
	svc := newTestService(&fakeStore{rows: []*applicationModel.Application{a}})

	req := &dto.SaveDraftRequest{
		Track:              constants.TrackReguler,
		ConfirmTrackSwitch: true,
		FullName:           "Siti Rahma",
		Scores: map[string]interface{}{
			validation.ScoreKey("matematika", 2): 95.0,
			validation.ScoreKey("matematika", 3): 95.0,
		},
	}
	updated, err := svc.SaveDraft(owner, "smp", req)
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	if updated.Track != constants.TrackReguler {
		t.Errorf("track = %q, mau %q", updated.Track, constants.TrackReguler)
	}
	if len(updated.Scores) != 0 {
		t.Errorf("nilai dari payload selamat dari pembersihan: %v", updated.Scores)
	}
	if updated.DocumentURL(validation.DocSlotReportCard(2)) != "" {
		t.Errorf("rapor semester 2 harus dibersihkan (tidak diwajibkan jalur baru)")
	}
	if updated.DocumentURL(validation.DocSlotReportCard(3)) == "" ||
		updated.DocumentURL(validation.DocSlotReportCard(4)) == "" {
		t.Errorf("rapor semester irisan (3-4) harus dipertahankan")
	}
	if updated.DocumentURL(validation.DocSlotCertificate) == "" ||
		updated.DocumentURL(validation.DocSlotPhoto) == "" {
		t.Errorf("sertifikat dan pas foto tidak boleh ikut dibersihkan")
	}
}

// Pindah jalur dengan nilai terisi tanpa konfirmasi harus ditolak tanpa
// mengubah draft.
func TestSaveDraftTrackSwitchNeedsConfirm(t *testing.T) {
	owner := uuid.New()
	a := completeDraft(owner, "smp", constants.TrackPrestasi, "3201234567890001")
	svc := newTestService(&fakeStore{rows: []*applicationModel.Application{a}})

	req := &dto.SaveDraftRequest{Track: constants.TrackReguler}
	if _, err := svc.SaveDraft(owner, "smp", req); !errors.Is(err, ErrSwitchNeedsConfirm) {
		t.Fatalf("err = %v, mau ErrSwitchNeedsConfirm", err)
	}
	if a.Track != constants.TrackPrestasi || len(a.Scores) == 0 {
		t.Errorf("draft berubah padahal konfirmasi ditolak")
	}
}

// Payload tanpa track berarti jalur tidak berubah — bukan pindah ke jalur
// kosong yang menghapus pilihan tersimpan.
func TestSaveDraftOmittedTrackKeepsTrack(t *testing.T) {
	owner := uuid.New()
	a := completeDraft(owner, "smp", constants.TrackPrestasi, "3201234567890001")
	svc := newTestService(&fakeStore{rows: []*applicationModel.Application{a}})

	req := &dto.SaveDraftRequest{FullName: "Nama Baru"}
	updated, err := svc.SaveDraft(owner, "smp", req)
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if updated.Track != constants.TrackPrestasi {
		t.Errorf("track = %q, mau tetap %q", updated.Track, constants.TrackPrestasi)
	}
	if len(updated.Scores) == 0 {
		t.Errorf("nilai tersimpan ikut terhapus padahal jalur tidak berubah")
	}
	if updated.FullName != "Nama Baru" {
		t.Errorf("FullName = %q, mau %q", updated.FullName, "Nama Baru")
	}
}
