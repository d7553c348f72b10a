package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sessionModel "ppdb_backend/internals/features/admission/session/model"
)

// GormStore: implementasi session store di atas PostgreSQL.
// Service hanya bergantung pada interface-nya (service.Store).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Get(userID uuid.UUID, deviceID string) (*sessionModel.DeviceSession, error) {
	var sess sessionModel.DeviceSession
	if err := s.DB.
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// Upsert: maksimal satu record per (user, device); tulisan terakhir menang —
// record hanyalah heartbeat liveness, bukan lock, jadi race antar tab aman.
func (s *GormStore) Upsert(sess *sessionModel.DeviceSession) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"client_descriptor", "status", "last_seen_at", "updated_at",
		}),
	}).Create(sess).Error
}

// Touch menulis ulang heartbeat. Mengembalikan jumlah baris yang berubah:
// 0 berarti record sudah tidak ada (purge remote / reaper).
func (s *GormStore) Touch(userID uuid.UUID, deviceID string, now time.Time) (int64, error) {
	res := s.DB.Model(&sessionModel.DeviceSession{}).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Updates(map[string]interface{}{
			"last_seen_at": now,
			"status":       sessionModel.StatusActive,
		})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Delete(userID uuid.UUID, deviceID string) error {
	return s.DB.
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Delete(&sessionModel.DeviceSession{}).Error
}

func (s *GormStore) ListByUser(userID uuid.UUID) ([]sessionModel.DeviceSession, error) {
	var out []sessionModel.DeviceSession
	if err := s.DB.
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) DeleteStaleBefore(cutoff time.Time, limit int) (int64, error) {
	res := s.DB.Exec(`
		DELETE FROM device_sessions
		WHERE id IN (
			SELECT id FROM device_sessions
			WHERE last_seen_at < ?
			LIMIT ?
		)`, cutoff, limit)
	return res.RowsAffected, res.Error
}
