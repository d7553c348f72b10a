package constants

// Jalur pendaftaran. Tiga jalur paralel, masing-masing dengan jendela
// pendaftaran, tanggal tes, dan persyaratan sendiri.
const (
	TrackPrestasi = "prestasi" // jalur prestasi/merit
	TrackReguler  = "reguler"  // jalur umum
	TrackUndangan = "undangan" // jalur undangan
)

var Tracks = []string{TrackPrestasi, TrackReguler, TrackUndangan}

func IsValidTrack(t string) bool {
	for _, v := range Tracks {
		if v == t {
			return true
		}
	}
	return false
}
