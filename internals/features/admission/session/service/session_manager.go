package service

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "ppdb_backend/internals/features/admission/session/model"
)

// ErrSessionInvalid: record sesi hilang atau basi — client harus sign-out
// dan menampilkan notifikasi "sesi berakhir".
var ErrSessionInvalid = errors.New("sesi tidak valid atau sudah berakhir")

// Store adalah kontrak penyimpanan sesi. Produksi pakai repository.GormStore;
// test pakai store palsu di memori.
type Store interface {
	Get(userID uuid.UUID, deviceID string) (*sessionModel.DeviceSession, error)
	Upsert(sess *sessionModel.DeviceSession) error
	Touch(userID uuid.UUID, deviceID string, now time.Time) (int64, error)
	Delete(userID uuid.UUID, deviceID string) error
	ListByUser(userID uuid.UUID) ([]sessionModel.DeviceSession, error)
	DeleteStaleBefore(cutoff time.Time, limit int) (int64, error)
}

// OtherSession: ringkasan sesi hidup di perangkat lain, dilaporkan saat login
// sebagai informasi saja — tidak pernah mencabut sesi lain.
type OtherSession struct {
	DeviceID         string    `json:"device_id"`
	ClientDescriptor string    `json:"client_descriptor"`
	LoginAt          time.Time `json:"login_at"`
}

// SessionManager memegang siklus hidup sesi perangkat: registrasi, heartbeat,
// cek validitas, dan pembersihan. Clock di-inject supaya batas liveness bisa
// diuji tanpa menunggu timeout sungguhan.
type SessionManager struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

type Option func(*SessionManager)

// WithClock mengganti sumber waktu (untuk test).
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

func NewSessionManager(store Store, timeout time.Duration, opts ...Option) *SessionManager {
	m := &SessionManager{
		store:   store,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) Timeout() time.Duration { return m.timeout }

// Register menulis record sesi segar untuk (user, perangkat) ini.
// Dipanggil saat login dan saat kontak terautentikasi pertama tanpa record.
func (m *SessionManager) Register(userID uuid.UUID, deviceID, descriptor string) error {
	return m.store.Upsert(&sessionModel.DeviceSession{
		UserID:           userID,
		DeviceID:         deviceID,
		ClientDescriptor: descriptor,
		Status:           sessionModel.StatusActive,
		LastSeenAt:       m.now(),
	})
}

// Heartbeat menulis ulang timestamp sesi. Kegagalan tulis transien TIDAK
// memaksa sign-out — hanya record hilang/basi (lewat CheckValidity) yang
// memaksa. Aman dipanggil berulang kali dalam waktu singkat.
func (m *SessionManager) Heartbeat(userID uuid.UUID, deviceID string) {
	affected, err := m.store.Touch(userID, deviceID, m.now())
	if err != nil {
		log.Printf("[WARN] heartbeat sesi gagal (user=%s device=%s): %v", userID, deviceID, err)
		return
	}
	if affected == 0 {
		// record sudah dihapus; biarkan CheckValidity yang memutuskan sign-out
		log.Printf("[INFO] heartbeat tanpa record sesi (user=%s device=%s)", userID, deviceID)
	}
}

// CheckValidity membaca record sesi perangkat ini. Hilang atau basi berarti
// ErrSessionInvalid. Kegagalan baca store juga dianggap invalid (fail closed).
func (m *SessionManager) CheckValidity(userID uuid.UUID, deviceID string) error {
	sess, err := m.store.Get(userID, deviceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[WARN] cek sesi gagal baca store (user=%s device=%s): %v", userID, deviceID, err)
		}
		return ErrSessionInvalid
	}
	if !sess.IsLive(m.now(), m.timeout) {
		return ErrSessionInvalid
	}
	return nil
}

// OtherLiveSessions mengembalikan sesi hidup milik user di perangkat lain.
// Murni advisory: kegagalan baca hanya dicatat, login tetap jalan.
func (m *SessionManager) OtherLiveSessions(userID uuid.UUID, excludeDeviceID string) []OtherSession {
	sessions, err := m.store.ListByUser(userID)
	if err != nil {
		log.Printf("[WARN] gagal scan sesi lain (user=%s): %v", userID, err)
		return nil
	}

	now := m.now()
	out := make([]OtherSession, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		if s.DeviceID == excludeDeviceID || !s.IsLive(now, m.timeout) {
			continue
		}
		out = append(out, OtherSession{
			DeviceID:         s.DeviceID,
			ClientDescriptor: s.ClientDescriptor,
			LoginAt:          s.LastSeenAt,
		})
	}
	return out
}

// Remove menghapus record sesi perangkat ini. Idempoten: tanpa record pun
// bukan error.
func (m *SessionManager) Remove(userID uuid.UUID, deviceID string) error {
	if err := m.store.Delete(userID, deviceID); err != nil {
		log.Printf("[WARN] hapus sesi gagal (user=%s device=%s): %v", userID, deviceID, err)
		return err
	}
	return nil
}

// ReapStale menghapus record sesi yang sudah lewat timeout. Dipanggil
// scheduler; sesi basi tidak menumpuk di store.
func (m *SessionManager) ReapStale(limit int) (int64, error) {
	if limit <= 0 {
		limit = 100
	}
	cutoff := m.now().Add(-m.timeout)
	return m.store.DeleteStaleBefore(cutoff, limit)
}
