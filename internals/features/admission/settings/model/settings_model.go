package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ppdb_backend/internals/constants"
)

// nilai minimum default semua jalur; tiap jalur tetap punya field sendiri
// karena ambangnya bisa diatur independen lewat form settings
const DefaultMinScore = 83.0

var defaultRequirements = map[string][]string{
	constants.TrackPrestasi: {
		"Fotokopi rapor semester 2-4 yang dilegalisir",
		"Sertifikat prestasi minimal tingkat kabupaten/kota",
		"Pas foto 3x4 latar merah",
	},
	constants.TrackReguler: {
		"Fotokopi rapor semester 3-4 yang dilegalisir",
		"Surat keterangan berkelakuan baik",
		"Pas foto 3x4 latar merah",
	},
	constants.TrackUndangan: {
		"Fotokopi rapor semester 2-4 yang dilegalisir",
		"Surat rekomendasi dari kepala sekolah asal",
		"Pas foto 3x4 latar merah",
	},
}

// TrackSettings: konfigurasi satu jalur. Enabled berdiri sendiri dari jendela
// tanggal — jalur bisa sedang dalam jendela tapi dimatikan admin, dan itu
// tetap memblokir.
type TrackSettings struct {
	Enabled    bool           `gorm:"column:enabled;not null;default:false" json:"enabled"`
	StartDate  *time.Time     `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	EndDate    *time.Time     `gorm:"column:end_date;type:date" json:"end_date,omitempty"`
	TestDate   *time.Time     `gorm:"column:test_date;type:date" json:"test_date,omitempty"`
	ResultDate *time.Time     `gorm:"column:result_date;type:date" json:"result_date,omitempty"`
	MinScore   float64        `gorm:"column:min_score;not null;default:83" json:"min_score"`
	Requirements pq.StringArray `gorm:"column:requirements;type:text[]" json:"requirements"`
}

// IsOpen: jalur menerima pendaftaran bila di-enable DAN hari ini di dalam
// jendela. Disabled memblokir walau tanggal masih aktif.
func (t *TrackSettings) IsOpen(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	if t.StartDate != nil && now.Before(*t.StartDate) {
		return false
	}
	if t.EndDate != nil && now.After(t.EndDate.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}

// AdmissionSettings: singleton per sekolah per tahun ajaran. Tanpa versioning,
// tulisan terakhir menang.
type AdmissionSettings struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	School       string    `gorm:"column:school;type:varchar(10);not null;uniqueIndex:idx_settings_school_year" json:"school"`
	AcademicYear string    `gorm:"column:academic_year;size:9;not null;uniqueIndex:idx_settings_school_year" json:"academic_year"`

	Prestasi TrackSettings `gorm:"embedded;embeddedPrefix:prestasi_" json:"prestasi"`
	Reguler  TrackSettings `gorm:"embedded;embeddedPrefix:reguler_" json:"reguler"`
	Undangan TrackSettings `gorm:"embedded;embeddedPrefix:undangan_" json:"undangan"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdmissionSettings) TableName() string {
	return "admission_settings"
}

// Track mengembalikan sub-record jalur berdasarkan nama.
func (s *AdmissionSettings) Track(track string) *TrackSettings {
	switch track {
	case constants.TrackPrestasi:
		return &s.Prestasi
	case constants.TrackReguler:
		return &s.Reguler
	case constants.TrackUndangan:
		return &s.Undangan
	default:
		return nil
	}
}

// DefaultSettings: konfigurasi lengkap dengan nilai bawaan untuk sekolah.
func DefaultSettings(school, academicYear string) *AdmissionSettings {
	s := &AdmissionSettings{
		School:       school,
		AcademicYear: academicYear,
	}
	s.FillDefaults()
	return s
}

// FillDefaults mengisi field opsional yang masih kosong dengan nilai bawaan.
// Langkah konstruktor eksplisit — bukan merge objek dinamis.
func (s *AdmissionSettings) FillDefaults() {
	fillTrack := func(track string, t *TrackSettings) {
		if t.MinScore == 0 {
			t.MinScore = DefaultMinScore
		}
		if len(t.Requirements) == 0 {
			t.Requirements = append(pq.StringArray{}, defaultRequirements[track]...)
		}
	}
	fillTrack(constants.TrackPrestasi, &s.Prestasi)
	fillTrack(constants.TrackReguler, &s.Reguler)
	fillTrack(constants.TrackUndangan, &s.Undangan)
}
