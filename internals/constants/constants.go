package constants

// Role user di aplikasi PPDB.
const (
	RoleApplicant = "applicant"
	RoleAdmin     = "admin"
)

// Partisi sekolah. Dua sekolah di bawah satu yayasan; data pendaftaran,
// pengaturan jalur, dan cek duplikasi NIK semuanya di-scope per sekolah.
const (
	SchoolSMP = "smp"
	SchoolSMA = "sma"
)

var Schools = []string{SchoolSMP, SchoolSMA}

func IsValidSchool(s string) bool {
	for _, v := range Schools {
		if v == s {
			return true
		}
	}
	return false
}
