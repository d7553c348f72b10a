package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	authRepo "ppdb_backend/internals/features/users/auth/repository"
)

// StartTokenCleanupScheduler menghapus entri blacklist yang sudah kedaluwarsa
// secara berkala supaya tabelnya tidak membengkak.
func StartTokenCleanupScheduler(db *gorm.DB) {
	interval := time.Duration(configs.GetEnvInt("TOKEN_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			n, err := authRepo.CleanupExpiredBlacklist(db)
			if err != nil {
				log.Printf("[CLEANUP] gagal bersihkan blacklist: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[CLEANUP] %d token blacklist kedaluwarsa dihapus", n)
			}
		}
	}()
	log.Printf("🧹 Scheduler pembersihan token aktif (interval %s)", interval)
}
