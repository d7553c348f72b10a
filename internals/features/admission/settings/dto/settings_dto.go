package dto

import (
	"time"

	settingsModel "ppdb_backend/internals/features/admission/settings/model"
)

// TrackSettingsRequest: payload satu jalur dari form settings admin.
type TrackSettingsRequest struct {
	Enabled      bool       `json:"enabled"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	TestDate     *time.Time `json:"test_date"`
	ResultDate   *time.Time `json:"result_date"`
	MinScore     float64    `json:"min_score" validate:"omitempty,gte=0,lte=100"`
	Requirements []string   `json:"requirements"`
}

type UpdateSettingsRequest struct {
	AcademicYear string               `json:"academic_year" validate:"required,len=9"`
	Prestasi     TrackSettingsRequest `json:"prestasi"`
	Reguler      TrackSettingsRequest `json:"reguler"`
	Undangan     TrackSettingsRequest `json:"undangan"`
}

func (r *TrackSettingsRequest) Apply(t *settingsModel.TrackSettings) {
	t.Enabled = r.Enabled
	t.StartDate = r.StartDate
	t.EndDate = r.EndDate
	t.TestDate = r.TestDate
	t.ResultDate = r.ResultDate
	t.MinScore = r.MinScore
	t.Requirements = append(t.Requirements[:0], r.Requirements...)
}

// TrackStatusResponse: status jalur untuk halaman publik.
type TrackStatusResponse struct {
	Enabled      bool       `json:"enabled"`
	Open         bool       `json:"open"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TestDate     *time.Time `json:"test_date,omitempty"`
	ResultDate   *time.Time `json:"result_date,omitempty"`
	MinScore     float64    `json:"min_score"`
	Requirements []string   `json:"requirements"`
}

func NewTrackStatusResponse(t *settingsModel.TrackSettings, now time.Time) TrackStatusResponse {
	return TrackStatusResponse{
		Enabled:      t.Enabled,
		Open:         t.IsOpen(now),
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		TestDate:     t.TestDate,
		ResultDate:   t.ResultDate,
		MinScore:     t.MinScore,
		Requirements: t.Requirements,
	}
}

type SettingsResponse struct {
	School       string              `json:"school"`
	AcademicYear string              `json:"academic_year"`
	Prestasi     TrackStatusResponse `json:"prestasi"`
	Reguler      TrackStatusResponse `json:"reguler"`
	Undangan     TrackStatusResponse `json:"undangan"`
}

func NewSettingsResponse(s *settingsModel.AdmissionSettings, now time.Time) SettingsResponse {
	return SettingsResponse{
		School:       s.School,
		AcademicYear: s.AcademicYear,
		Prestasi:     NewTrackStatusResponse(&s.Prestasi, now),
		Reguler:      NewTrackStatusResponse(&s.Reguler, now),
		Undangan:     NewTrackStatusResponse(&s.Undangan, now),
	}
}
