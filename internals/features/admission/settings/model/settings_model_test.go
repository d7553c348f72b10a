package model

import (
	"testing"
	"time"

	"ppdb_backend/internals/constants"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFillDefaults(t *testing.T) {
	s := &AdmissionSettings{School: constants.SchoolSMA, AcademicYear: "2026/2027"}
	s.FillDefaults()

	for _, track := range constants.Tracks {
		ts := s.Track(track)
		if ts == nil {
			t.Fatalf("Track(%q) nil", track)
		}
		if ts.MinScore != DefaultMinScore {
			t.Errorf("jalur %s: MinScore default harus %.0f, dapat %.1f", track, DefaultMinScore, ts.MinScore)
		}
		if len(ts.Requirements) == 0 {
			t.Errorf("jalur %s: Requirements default tidak boleh kosong", track)
		}
	}
}

func TestFillDefaultsPreservesStoredValues(t *testing.T) {
	s := &AdmissionSettings{School: constants.SchoolSMP, AcademicYear: "2026/2027"}
	s.Prestasi.MinScore = 90
	s.Prestasi.Requirements = []string{"Sertifikat OSN"}
	s.FillDefaults()

	if s.Prestasi.MinScore != 90 {
		t.Errorf("MinScore tersimpan harus dipertahankan, dapat %.1f", s.Prestasi.MinScore)
	}
	if len(s.Prestasi.Requirements) != 1 || s.Prestasi.Requirements[0] != "Sertifikat OSN" {
		t.Errorf("Requirements tersimpan harus dipertahankan, dapat %v", s.Prestasi.Requirements)
	}
	// jalur lain tetap dapat default
	if s.Reguler.MinScore != DefaultMinScore {
		t.Errorf("jalur lain harus tetap dapat default, dapat %.1f", s.Reguler.MinScore)
	}
}

func TestIsOpenDisabledBlocksRegardlessOfDates(t *testing.T) {
	now := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	ts := TrackSettings{
		Enabled:   false,
		StartDate: date(2026, 7, 1),
		EndDate:   date(2026, 7, 31),
	}
	if ts.IsOpen(now) {
		t.Fatal("jalur disabled harus tertutup walau tanggal aktif")
	}

	ts.Enabled = true
	if !ts.IsOpen(now) {
		t.Fatal("jalur enabled dalam jendela harus terbuka")
	}
}

func TestIsOpenWindow(t *testing.T) {
	ts := TrackSettings{
		Enabled:   true,
		StartDate: date(2026, 7, 1),
		EndDate:   date(2026, 7, 31),
	}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"sebelum jendela", time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC), false},
		{"hari pertama", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"hari terakhir", time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC), true},
		{"setelah jendela", time.Date(2026, 8, 1, 0, 1, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := ts.IsOpen(tc.now); got != tc.want {
			t.Errorf("%s: IsOpen = %v, harus %v", tc.name, got, tc.want)
		}
	}
}
