// Package validation berisi mesin validasi formulir pendaftaran: kelengkapan
// field, aturan NIK, nilai rapor per jalur, kelengkapan dokumen, gating tab,
// dan rencana pembersihan saat ganti jalur. Seluruhnya fungsi murni atas draft
// + konfigurasi jalur; query duplikasi NIK dilakukan caller dan hasilnya
// dioper sebagai input.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"ppdb_backend/internals/constants"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	settingsModel "ppdb_backend/internals/features/admission/settings/model"
)

/* ==========================
   Kategori error
========================== */

type Category string

const (
	CategoryMissingFields    Category = "missing-fields"
	CategoryNIKFormat        Category = "nik-format"
	CategoryNIKDuplicate     Category = "nik-duplicate"
	CategoryScoreRange       Category = "score-range"
	CategoryScoreThreshold   Category = "score-threshold"
	CategoryMissingDocuments Category = "missing-documents"
)

// Result: satu pesan agregat per kategori, supaya caller bisa menampilkan
// satu alert yang actionable per percobaan.
type Result struct {
	Errors map[Category]string
}

func newResult() *Result {
	return &Result{Errors: map[Category]string{}}
}

func (r *Result) add(cat Category, msg string) {
	r.Errors[cat] = msg
}

func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) Message(cat Category) string {
	return r.Errors[cat]
}

// FieldErrors: bentuk map[kategori][]pesan untuk response 422.
func (r *Result) FieldErrors() map[string][]string {
	out := make(map[string][]string, len(r.Errors))
	for cat, msg := range r.Errors {
		out[string(cat)] = []string{msg}
	}
	return out
}

/* ==========================
   Jalur → semester & mapel
========================== */

// Pemetaan semester kanonik per jalur. Catatan untuk stakeholder: materi
// sosialisasi lama menyebut rapor semester 2-4 juga untuk jalur reguler;
// keputusan final reguler hanya semester 3-4. Dipaku oleh test.
var trackSemesters = map[string][]int{
	constants.TrackPrestasi: {2, 3, 4},
	constants.TrackUndangan: {2, 3, 4},
	constants.TrackReguler:  {3, 4},
}

// RequiredSemesters: daftar semester rapor yang wajib untuk jalur.
func RequiredSemesters(track string) []int {
	sems, ok := trackSemesters[track]
	if !ok {
		return nil
	}
	return append([]int(nil), sems...)
}

type Subject struct {
	Key   string
	Label string
}

var Subjects = []Subject{
	{Key: "matematika", Label: "Matematika"},
	{Key: "ipa", Label: "IPA"},
	{Key: "indonesia", Label: "Bahasa Indonesia"},
	{Key: "inggris", Label: "Bahasa Inggris"},
}

// ScoreKey: key nilai di map Scores, mis. "matematika_3".
func ScoreKey(subject string, semester int) string {
	return fmt.Sprintf("%s_%d", subject, semester)
}

// TrackRules: aturan nilai satu jalur. MinScore per jalur (bukan konstanta
// global) karena ambang tiap jalur bisa diatur independen.
type TrackRules struct {
	Semesters []int
	MinScore  float64
}

// RulesFor mengambil aturan jalur dari konfigurasi yang berlaku.
func RulesFor(track string, settings *settingsModel.AdmissionSettings) TrackRules {
	rules := TrackRules{
		Semesters: RequiredSemesters(track),
		MinScore:  settingsModel.DefaultMinScore,
	}
	if settings != nil {
		if ts := settings.Track(track); ts != nil && ts.MinScore > 0 {
			rules.MinScore = ts.MinScore
		}
	}
	return rules
}

/* ==========================
   Gating tab
========================== */

type Section int

const (
	SectionStudent Section = iota
	SectionScores
	SectionParent
	SectionDocuments
)

type labeledField struct {
	Label string
	Value func(*applicationModel.Application) string
}

var studentFields = []labeledField{
	{"Nama Lengkap", func(a *applicationModel.Application) string { return a.FullName }},
	{"NIK", func(a *applicationModel.Application) string { return a.NIK }},
	{"NISN", func(a *applicationModel.Application) string { return a.NISN }},
	{"Tempat Lahir", func(a *applicationModel.Application) string { return a.BirthPlace }},
	{"Tanggal Lahir", func(a *applicationModel.Application) string { return a.BirthDate }},
	{"Jenis Kelamin", func(a *applicationModel.Application) string { return a.Gender }},
	{"Agama", func(a *applicationModel.Application) string { return a.Religion }},
	{"Alamat", func(a *applicationModel.Application) string { return a.Address }},
	{"No. HP", func(a *applicationModel.Application) string { return a.Phone }},
	{"Asal Sekolah", func(a *applicationModel.Application) string { return a.PriorSchool }},
	{"Alamat Sekolah Asal", func(a *applicationModel.Application) string { return a.PriorSchoolAddress }},
}

var parentFields = []labeledField{
	{"Nama Ayah", func(a *applicationModel.Application) string { return a.FatherName }},
	{"Pekerjaan Ayah", func(a *applicationModel.Application) string { return a.FatherJob }},
	{"Nama Ibu", func(a *applicationModel.Application) string { return a.MotherName }},
	{"Pekerjaan Ibu", func(a *applicationModel.Application) string { return a.MotherJob }},
	{"No. HP Orang Tua/Wali", func(a *applicationModel.Application) string { return a.GuardianPhone }},
}

func missingLabels(a *applicationModel.Application, fields []labeledField) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value(a)) == "" {
			out = append(out, f.Label)
		}
	}
	return out
}

// MissingStudentFields: label field siswa yang masih kosong (setelah trim).
func MissingStudentFields(a *applicationModel.Application) []string {
	return missingLabels(a, studentFields)
}

// MissingParentFields: label field orang tua yang masih kosong.
func MissingParentFields(a *applicationModel.Application) []string {
	return missingLabels(a, parentFields)
}

// CanAccessSection: tab 0 selalu bisa; tab ≥1 hanya bila data siswa lengkap
// dan jalur sudah dipilih. Fungsi murni atas draft saat ini — bukan gerbang
// satu arah: mengosongkan field membuat tab lanjutan tertutup lagi.
func CanAccessSection(a *applicationModel.Application, sec Section) bool {
	if sec <= SectionStudent {
		return true
	}
	return len(MissingStudentFields(a)) == 0 && constants.IsValidTrack(a.Track)
}

/* ==========================
   NIK
========================== */

// NIKSentinel: pendaftar tanpa NIK mengisi "-".
const NIKSentinel = "-"

// ValidateNIK: sentinel selalu valid; selain itu wajib tepat 16 digit angka.
func ValidateNIK(nik string) error {
	nik = strings.TrimSpace(nik)
	if nik == NIKSentinel {
		return nil
	}
	if len(nik) != 16 {
		return fmt.Errorf("NIK harus 16 digit angka")
	}
	for _, r := range nik {
		if r < '0' || r > '9' {
			return fmt.Errorf("NIK harus 16 digit angka")
		}
	}
	return nil
}

// NeedsDuplicateCheck: hanya NIK 16 digit yang valid secara format yang
// dicek duplikasinya.
func NeedsDuplicateCheck(nik string) bool {
	nik = strings.TrimSpace(nik)
	return nik != NIKSentinel && ValidateNIK(nik) == nil
}

/* ==========================
   Nilai rapor
========================== */

// scoreValue membaca nilai dari map JSONB; angka hasil unmarshal bisa berupa
// float64, int, atau string.
func scoreValue(a *applicationModel.Application, key string) (float64, bool) {
	if a.Scores == nil {
		return 0, false
	}
	v, ok := a.Scores[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ValidateScores memeriksa nilai per (mapel × semester wajib). Gagal range
// (kosong/bukan angka/di luar 0-100) dan gagal ambang minimum menghasilkan
// daftar terpisah, masing-masing menyebut mapel + semester.
func ValidateScores(a *applicationModel.Application, rules TrackRules) (rangeFails, thresholdFails []string) {
	for _, subj := range Subjects {
		for _, sem := range rules.Semesters {
			label := fmt.Sprintf("%s semester %d", subj.Label, sem)
			v, ok := scoreValue(a, ScoreKey(subj.Key, sem))
			if !ok || v < 0 || v > 100 {
				rangeFails = append(rangeFails, label)
				continue
			}
			if v < rules.MinScore {
				thresholdFails = append(thresholdFails, label)
			}
		}
	}
	return rangeFails, thresholdFails
}

/* ==========================
   Dokumen
========================== */

const (
	DocSlotPhoto       = "pas_foto"
	DocSlotCertificate = "sertifikat"
)

// DocSlotReportCard: slot rapor per semester, "rapor_2".."rapor_4".
func DocSlotReportCard(semester int) string {
	return fmt.Sprintf("rapor_%d", semester)
}

type DocumentSlot struct {
	Slot  string
	Label string
}

// RequiredDocuments: pas foto selalu wajib; sertifikat/rekomendasi wajib;
// satu rapor per semester wajib jalur.
func RequiredDocuments(track string) []DocumentSlot {
	out := []DocumentSlot{
		{DocSlotPhoto, "Pas Foto"},
		{DocSlotCertificate, "Sertifikat/Surat Rekomendasi"},
	}
	for _, sem := range RequiredSemesters(track) {
		out = append(out, DocumentSlot{
			Slot:  DocSlotReportCard(sem),
			Label: fmt.Sprintf("Rapor Semester %d", sem),
		})
	}
	return out
}

// MissingDocuments: label dokumen wajib yang slotnya masih kosong.
// Slot terpenuhi oleh URL terunggah; file lokal yang masih pending dikirim
// client lewat pendingSlots.
func MissingDocuments(a *applicationModel.Application, pendingSlots map[string]bool) []string {
	var out []string
	for _, doc := range RequiredDocuments(a.Track) {
		if a.DocumentURL(doc.Slot) == "" && !pendingSlots[doc.Slot] {
			out = append(out, doc.Label)
		}
	}
	return out
}

/* ==========================
   Ganti jalur
========================== */

// SwitchPlan: akibat perpindahan jalur. Nilai rapor dibersihkan semua; slot
// rapor dibersihkan untuk semester yang tidak diwajibkan KEDUA jalur (slot
// irisan dipertahankan); slot sertifikat tidak pernah ikut dibersihkan.
type SwitchPlan struct {
	ClearScores          bool
	ClearReportSemesters []int
}

// TrackSwitchPlan menghitung rencana pembersihan saat pindah oldTrack→newTrack.
func TrackSwitchPlan(oldTrack, newTrack string) SwitchPlan {
	if oldTrack == newTrack {
		return SwitchPlan{}
	}

	keep := map[int]bool{}
	for _, s := range RequiredSemesters(newTrack) {
		keep[s] = true
	}
	var cleared []int
	for _, s := range RequiredSemesters(oldTrack) {
		if !keep[s] {
			cleared = append(cleared, s)
		}
	}
	return SwitchPlan{
		ClearScores:          true,
		ClearReportSemesters: cleared,
	}
}

// NeedsSwitchConfirmation: ganti jalur perlu konfirmasi kalau sudah ada nilai
// atau rapor terisi (set semester wajib berbeda antar jalur).
func NeedsSwitchConfirmation(a *applicationModel.Application) bool {
	for key := range a.Scores {
		if _, ok := scoreValue(a, key); ok {
			return true
		}
	}
	for sem := 1; sem <= 5; sem++ {
		if a.DocumentURL(DocSlotReportCard(sem)) != "" {
			return true
		}
	}
	return false
}

// ApplySwitchPlan menjalankan rencana pada draft.
func ApplySwitchPlan(a *applicationModel.Application, plan SwitchPlan) {
	if plan.ClearScores {
		a.Scores = nil
	}
	for _, sem := range plan.ClearReportSemesters {
		a.ClearDocument(DocSlotReportCard(sem))
	}
}

/* ==========================
   Evaluasi keseluruhan
========================== */

// Evaluate menjalankan seluruh aturan untuk gerbang submit. nikDuplicate
// adalah hasil query duplikasi milik caller (scoped ke partisi sekolah,
// exclude pemilik sendiri). Simpan draft TIDAK lewat sini — draft tidak
// pernah gagal karena konten belum lengkap.
func Evaluate(a *applicationModel.Application, rules TrackRules, nikDuplicate bool, pendingSlots map[string]bool) *Result {
	res := newResult()

	missing := append(MissingStudentFields(a), MissingParentFields(a)...)
	if !constants.IsValidTrack(a.Track) {
		missing = append(missing, "Jalur Pendaftaran")
	}
	if len(missing) > 0 {
		res.add(CategoryMissingFields, "Data belum lengkap: "+strings.Join(missing, ", "))
	}

	if err := ValidateNIK(a.NIK); err != nil {
		res.add(CategoryNIKFormat, err.Error())
	} else if nikDuplicate {
		res.add(CategoryNIKDuplicate,
			"NIK sudah terdaftar pada pendaftaran lain di sekolah ini. Periksa kembali NIK Anda.")
	}

	if constants.IsValidTrack(a.Track) {
		rangeFails, thresholdFails := ValidateScores(a, rules)
		if len(rangeFails) > 0 {
			res.add(CategoryScoreRange, "Nilai harus angka 0-100: "+strings.Join(rangeFails, ", "))
		}
		if len(thresholdFails) > 0 {
			res.add(CategoryScoreThreshold,
				fmt.Sprintf("Nilai di bawah minimum %.0f: %s", rules.MinScore, strings.Join(thresholdFails, ", ")))
		}

		if docs := MissingDocuments(a, pendingSlots); len(docs) > 0 {
			res.add(CategoryMissingDocuments, "Dokumen belum lengkap: "+strings.Join(docs, ", "))
		}
	}

	return res
}
