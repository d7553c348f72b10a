package model

import (
	"time"
)

// TokenBlacklist menampung access token yang sudah di-logout
// sampai masa berlakunya habis.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:text;not null;index" json:"-"`
	ExpiredAt time.Time `gorm:"column:expired_at;type:timestamptz;not null" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
