package repository

import (
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	applicationModel "ppdb_backend/internals/features/admission/application/model"
)

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

// FindByOwner: pendaftaran milik user di satu sekolah; nil kalau belum ada.
func (r *ApplicationRepository) FindByOwner(ownerID uuid.UUID, school string) (*applicationModel.Application, error) {
	var a applicationModel.Application
	err := r.DB.Where("owner_id = ? AND school = ?", ownerID, school).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) FindByID(id uuid.UUID) (*applicationModel.Application, error) {
	var a applicationModel.Application
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) FindByPaymentOrderID(orderID string) (*applicationModel.Application, error) {
	var a applicationModel.Application
	if err := r.DB.First(&a, "payment_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) Create(a *applicationModel.Application) error {
	return r.DB.Create(a).Error
}

func (r *ApplicationRepository) Save(a *applicationModel.Application) error {
	return r.DB.Save(a).Error
}

func (r *ApplicationRepository) Delete(a *applicationModel.Application) error {
	return r.DB.Delete(a).Error
}

// IsNIKTaken: duplikasi NIK di partisi sekolah yang sama, hanya terhadap
// pendaftaran yang sudah submitted, pendaftaran milik sendiri dikecualikan.
// Error DB dianggap TIDAK duplikat (fail open): cek ini penjaga kualitas
// data, bukan gerbang keamanan — jangan blokir pendaftar karena DB sedang
// bermasalah.
func (r *ApplicationRepository) IsNIKTaken(school, nik string, excludeOwner uuid.UUID) bool {
	nik = strings.TrimSpace(nik)
	if nik == "" || nik == "-" {
		return false
	}

	var count int64
	err := r.DB.Model(&applicationModel.Application{}).
		Where("school = ? AND nik = ? AND status = ? AND owner_id <> ?",
			school, nik, applicationModel.StatusSubmitted, excludeOwner).
		Count(&count).Error
	if err != nil {
		log.Printf("[WARN] cek duplikasi NIK gagal: %v", err)
		return false
	}
	return count > 0
}

// ListFilter: filter daftar pendaftaran untuk admin.
type ListFilter struct {
	School   string
	Track    string
	Status   string
	Decision string
	Search   string // nama / NIK / asal sekolah
	Limit    int
	Offset   int
}

func (r *ApplicationRepository) List(f ListFilter) ([]applicationModel.Application, int64, error) {
	q := r.DB.Model(&applicationModel.Application{}).Where("school = ?", f.School)

	if f.Track != "" {
		q = q.Where("track = ?", f.Track)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Decision != "" {
		q = q.Where("decision = ?", f.Decision)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR nik LIKE ? OR LOWER(prior_school) LIKE ?", like, "%"+s+"%", like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []applicationModel.Application
	err := q.Order("submitted_at DESC NULLS LAST, updated_at DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAllForExport: seluruh baris sesuai filter tanpa paginasi, urut nama.
func (r *ApplicationRepository) ListAllForExport(f ListFilter) ([]applicationModel.Application, error) {
	f.Limit = -1
	f.Offset = -1
	q := r.DB.Model(&applicationModel.Application{}).Where("school = ?", f.School)
	if f.Track != "" {
		q = q.Where("track = ?", f.Track)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Decision != "" {
		q = q.Where("decision = ?", f.Decision)
	}

	var rows []applicationModel.Application
	if err := q.Order("full_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByStatus: rekap dashboard admin per sekolah.
func (r *ApplicationRepository) CountByStatus(school string) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.DB.Model(&applicationModel.Application{}).
		Select("status, COUNT(*) AS total").
		Where("school = ?", school).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := map[string]int64{}
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}
