package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DeviceSession: satu sesi login per (user, perangkat). Kebaruan last_seen_at
// yang menentukan hidup/mati sesi, bukan kolom status.
type DeviceSession struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_device_sessions_user_device" json:"user_id"`

	// identifier per-instalasi-browser, dibuat client/server sekali lalu dipakai ulang
	DeviceID string `gorm:"column:device_id;size:100;not null;uniqueIndex:idx_device_sessions_user_device" json:"device_id"`

	// user agent + platform, informasional saja
	ClientDescriptor string `gorm:"column:client_descriptor;size:512" json:"client_descriptor"`

	Status string `gorm:"column:status;type:varchar(10);not null;default:'active'" json:"status"`

	// heartbeat terakhir; timestamp server
	LastSeenAt time.Time `gorm:"column:last_seen_at;type:timestamptz;not null" json:"last_seen_at"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (DeviceSession) TableName() string {
	return "device_sessions"
}

// IsLive: sesi hidup selama heartbeat terakhir masih dalam jendela timeout.
func (s *DeviceSession) IsLive(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastSeenAt) <= timeout
}
