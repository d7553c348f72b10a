package validation

import (
	"reflect"
	"testing"

	"ppdb_backend/internals/constants"
	applicationModel "ppdb_backend/internals/features/admission/application/model"
	settingsModel "ppdb_backend/internals/features/admission/settings/model"
	"gorm.io/datatypes"
)

func completeDraft(track string) *applicationModel.Application {
	a := &applicationModel.Application{
		School:             constants.SchoolSMA,
		Track:              track,
		FullName:           "Budi Santoso",
		NIK:                "3201234567890001",
		NISN:               "0051234567",
		BirthPlace:         "Bandung",
		BirthDate:          "2011-03-14",
		Gender:             "Laki-laki",
		Religion:           "Islam",
		Address:            "Jl. Merdeka No. 1",
		Phone:              "081234567890",
		PriorSchool:        "SMP Negeri 1 Bandung",
		PriorSchoolAddress: "Jl. Asia Afrika No. 2",
		FatherName:         "Ahmad Santoso",
		FatherJob:          "Wiraswasta",
		MotherName:         "Siti Aminah",
		MotherJob:          "Guru",
		GuardianPhone:      "081298765432",
		Scores:             datatypes.JSONMap{},
		Documents:          datatypes.JSONMap{},
	}
	for _, subj := range Subjects {
		for _, sem := range RequiredSemesters(track) {
			a.Scores[ScoreKey(subj.Key, sem)] = 90.0
		}
	}
	for _, doc := range RequiredDocuments(track) {
		a.SetDocumentURL(doc.Slot, "https://cdn.example.com/"+doc.Slot+".webp")
	}
	return a
}

func defaultRules(track string) TrackRules {
	return RulesFor(track, settingsModel.DefaultSettings(constants.SchoolSMA, "2026/2027"))
}

/* ==========================
   Semester per jalur
========================== */

func TestRequiredSemesters(t *testing.T) {
	cases := []struct {
		track string
		want  []int
	}{
		{constants.TrackPrestasi, []int{2, 3, 4}},
		{constants.TrackUndangan, []int{2, 3, 4}},
		{constants.TrackReguler, []int{3, 4}},
	}
	for _, tc := range cases {
		if got := RequiredSemesters(tc.track); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("RequiredSemesters(%s) = %v, harus %v", tc.track, got, tc.want)
		}
	}
	if got := RequiredSemesters("ngawur"); got != nil {
		t.Errorf("jalur tidak dikenal harus nil, dapat %v", got)
	}
}

/* ==========================
   NIK
========================== */

func TestValidateNIK(t *testing.T) {
	cases := []struct {
		name string
		nik  string
		ok   bool
	}{
		{"sentinel strip", "-", true},
		{"16 digit", "3201234567890001", true},
		{"15 digit", "320123456789000", false},
		{"17 digit", "32012345678900012", false},
		{"ada huruf", "32012345678900ab", false},
		{"kosong", "", false},
		{"spasi di dalam", "3201 234567890001", false},
		{"sentinel dengan spasi luar", " - ", true},
	}
	for _, tc := range cases {
		err := ValidateNIK(tc.nik)
		if (err == nil) != tc.ok {
			t.Errorf("%s: ValidateNIK(%q) err=%v, harus ok=%v", tc.name, tc.nik, err, tc.ok)
		}
	}
}

func TestNeedsDuplicateCheck(t *testing.T) {
	if NeedsDuplicateCheck("-") {
		t.Error("sentinel tidak perlu cek duplikasi")
	}
	if NeedsDuplicateCheck("123") {
		t.Error("NIK invalid tidak perlu cek duplikasi")
	}
	if !NeedsDuplicateCheck("3201234567890001") {
		t.Error("NIK valid 16 digit harus dicek duplikasinya")
	}
}

/* ==========================
   Nilai rapor
========================== */

func TestValidateScoresBoundaries(t *testing.T) {
	rules := defaultRules(constants.TrackReguler) // min 83

	cases := []struct {
		name          string
		score         interface{}
		wantRange     bool
		wantThreshold bool
	}{
		{"tepat minimum 83", 83.0, false, false},
		{"di bawah minimum 82.9", 82.9, false, true},
		{"maksimum 100", 100.0, false, false},
		{"di atas 100", 100.1, true, false},
		{"negatif", -1.0, true, false},
		{"nol lolos range tapi di bawah ambang", 0.0, false, true},
		{"string angka", "85", false, false},
		{"string bukan angka", "delapan lima", true, false},
		{"kosong", nil, true, false},
	}
	for _, tc := range cases {
		a := completeDraft(constants.TrackReguler)
		if tc.score == nil {
			delete(a.Scores, ScoreKey("matematika", 3))
		} else {
			a.Scores[ScoreKey("matematika", 3)] = tc.score
		}

		rangeFails, thresholdFails := ValidateScores(a, rules)
		if (len(rangeFails) > 0) != tc.wantRange {
			t.Errorf("%s: rangeFails=%v, harus gagal range=%v", tc.name, rangeFails, tc.wantRange)
		}
		if (len(thresholdFails) > 0) != tc.wantThreshold {
			t.Errorf("%s: thresholdFails=%v, harus gagal ambang=%v", tc.name, thresholdFails, tc.wantThreshold)
		}
	}
}

func TestValidateScoresMessageNamesSubjectAndSemester(t *testing.T) {
	a := completeDraft(constants.TrackPrestasi)
	a.Scores[ScoreKey("ipa", 2)] = 70.0

	_, thresholdFails := ValidateScores(a, defaultRules(constants.TrackPrestasi))
	if len(thresholdFails) != 1 || thresholdFails[0] != "IPA semester 2" {
		t.Fatalf("gagal ambang harus menyebut mapel+semester, dapat %v", thresholdFails)
	}
}

func TestValidateScoresRegulerIgnoresSemester2(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	// semester 2 bukan semester wajib reguler; isian nyasar tidak dinilai
	a.Scores[ScoreKey("matematika", 2)] = 10.0

	rangeFails, thresholdFails := ValidateScores(a, defaultRules(constants.TrackReguler))
	if len(rangeFails) != 0 || len(thresholdFails) != 0 {
		t.Fatalf("semester di luar jalur tidak boleh dinilai: range=%v threshold=%v", rangeFails, thresholdFails)
	}
}

/* ==========================
   Gating tab
========================== */

func TestCanAccessSection(t *testing.T) {
	a := completeDraft(constants.TrackPrestasi)
	if !CanAccessSection(a, SectionScores) {
		t.Fatal("draft lengkap harus bisa akses tab nilai")
	}

	a.FullName = ""
	if !CanAccessSection(a, SectionStudent) {
		t.Error("tab data siswa harus selalu bisa diakses")
	}
	if CanAccessSection(a, SectionScores) {
		t.Error("field siswa kosong harus menutup tab lanjutan lagi")
	}

	a.FullName = "Budi Santoso"
	a.Track = ""
	if CanAccessSection(a, SectionDocuments) {
		t.Error("tanpa jalur terpilih tab lanjutan harus tertutup")
	}
}

func TestMissingFieldsTrimsWhitespace(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	a.MotherJob = "   "
	missing := MissingParentFields(a)
	if len(missing) != 1 || missing[0] != "Pekerjaan Ibu" {
		t.Fatalf("field isi spasi harus dianggap kosong, dapat %v", missing)
	}
}

/* ==========================
   Dokumen
========================== */

func TestRequiredDocumentsPerTrack(t *testing.T) {
	slots := func(track string) []string {
		var out []string
		for _, d := range RequiredDocuments(track) {
			out = append(out, d.Slot)
		}
		return out
	}

	if got := slots(constants.TrackPrestasi); !reflect.DeepEqual(got,
		[]string{"pas_foto", "sertifikat", "rapor_2", "rapor_3", "rapor_4"}) {
		t.Errorf("slot prestasi salah: %v", got)
	}
	if got := slots(constants.TrackReguler); !reflect.DeepEqual(got,
		[]string{"pas_foto", "sertifikat", "rapor_3", "rapor_4"}) {
		t.Errorf("slot reguler salah: %v", got)
	}
}

func TestMissingDocumentsPendingSlotCounts(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	a.ClearDocument(DocSlotPhoto)

	if missing := MissingDocuments(a, nil); len(missing) != 1 || missing[0] != "Pas Foto" {
		t.Fatalf("pas foto kosong harus terdeteksi, dapat %v", missing)
	}
	// file yang baru dipilih dan belum terunggah tetap memenuhi slot
	if missing := MissingDocuments(a, map[string]bool{DocSlotPhoto: true}); len(missing) != 0 {
		t.Fatalf("slot pending harus dianggap terisi, dapat %v", missing)
	}
}

/* ==========================
   Ganti jalur
========================== */

func TestTrackSwitchPlan(t *testing.T) {
	cases := []struct {
		name       string
		from, to   string
		wantScores bool
		wantClear  []int
	}{
		{"prestasi→reguler buang semester 2", constants.TrackPrestasi, constants.TrackReguler, true, []int{2}},
		{"reguler→prestasi tidak buang rapor", constants.TrackReguler, constants.TrackPrestasi, true, nil},
		{"prestasi→undangan set sama", constants.TrackPrestasi, constants.TrackUndangan, true, nil},
		{"jalur sama no-op", constants.TrackReguler, constants.TrackReguler, false, nil},
	}
	for _, tc := range cases {
		plan := TrackSwitchPlan(tc.from, tc.to)
		if plan.ClearScores != tc.wantScores {
			t.Errorf("%s: ClearScores=%v, harus %v", tc.name, plan.ClearScores, tc.wantScores)
		}
		if !reflect.DeepEqual(plan.ClearReportSemesters, tc.wantClear) {
			t.Errorf("%s: ClearReportSemesters=%v, harus %v", tc.name, plan.ClearReportSemesters, tc.wantClear)
		}
	}
}

func TestApplySwitchPlanKeepsCertificateAndSharedReports(t *testing.T) {
	a := completeDraft(constants.TrackPrestasi)
	certURL := a.DocumentURL(DocSlotCertificate)
	rapor3 := a.DocumentURL(DocSlotReportCard(3))

	ApplySwitchPlan(a, TrackSwitchPlan(constants.TrackPrestasi, constants.TrackReguler))
	a.Track = constants.TrackReguler

	if a.Scores != nil {
		t.Error("nilai harus dibersihkan seluruhnya saat ganti jalur")
	}
	if a.DocumentURL(DocSlotReportCard(2)) != "" {
		t.Error("rapor semester 2 harus dibersihkan saat pindah ke reguler")
	}
	if a.DocumentURL(DocSlotReportCard(3)) != rapor3 {
		t.Error("rapor semester irisan harus dipertahankan")
	}
	if a.DocumentURL(DocSlotCertificate) != certURL {
		t.Error("sertifikat tidak boleh ikut dibersihkan")
	}
}

func TestNeedsSwitchConfirmation(t *testing.T) {
	a := &applicationModel.Application{Track: constants.TrackReguler}
	if NeedsSwitchConfirmation(a) {
		t.Error("draft kosong tidak perlu konfirmasi ganti jalur")
	}
	a.Scores = datatypes.JSONMap{ScoreKey("ipa", 3): 88.0}
	if !NeedsSwitchConfirmation(a) {
		t.Error("ada nilai terisi harus minta konfirmasi")
	}
}

/* ==========================
   Evaluate
========================== */

func TestEvaluateCompleteDraftPasses(t *testing.T) {
	a := completeDraft(constants.TrackUndangan)
	res := Evaluate(a, defaultRules(constants.TrackUndangan), false, nil)
	if !res.Ok() {
		t.Fatalf("draft lengkap harus lolos, errors: %v", res.Errors)
	}
}

func TestEvaluateAggregatesOneMessagePerCategory(t *testing.T) {
	a := completeDraft(constants.TrackPrestasi)
	a.FullName = ""
	a.MotherName = ""
	a.NIK = "123"
	a.Scores[ScoreKey("ipa", 2)] = 150.0
	a.Scores[ScoreKey("inggris", 3)] = 50.0
	a.ClearDocument(DocSlotPhoto)

	res := Evaluate(a, defaultRules(constants.TrackPrestasi), false, nil)

	for _, cat := range []Category{
		CategoryMissingFields, CategoryNIKFormat,
		CategoryScoreRange, CategoryScoreThreshold, CategoryMissingDocuments,
	} {
		if res.Message(cat) == "" {
			t.Errorf("kategori %s harus terisi", cat)
		}
	}
	if got := len(res.Errors); got != 5 {
		t.Errorf("harus tepat satu pesan per kategori, dapat %d entri", got)
	}
}

func TestEvaluateSentinelNIKSkipsDuplicate(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	a.NIK = "-"
	res := Evaluate(a, defaultRules(constants.TrackReguler), false, nil)
	if !res.Ok() {
		t.Fatalf("NIK sentinel harus valid, errors: %v", res.Errors)
	}
}

func TestEvaluateDuplicateNIK(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	res := Evaluate(a, defaultRules(constants.TrackReguler), true, nil)
	if res.Message(CategoryNIKDuplicate) == "" {
		t.Fatal("NIK duplikat harus menghasilkan error nik-duplicate")
	}
}

func TestEvaluateInvalidNIKFormatSuppressesDuplicate(t *testing.T) {
	a := completeDraft(constants.TrackReguler)
	a.NIK = "abc"
	res := Evaluate(a, defaultRules(constants.TrackReguler), true, nil)
	if res.Message(CategoryNIKFormat) == "" {
		t.Error("format salah harus menghasilkan error nik-format")
	}
	if res.Message(CategoryNIKDuplicate) != "" {
		t.Error("error duplikat tidak relevan saat format sudah salah")
	}
}
