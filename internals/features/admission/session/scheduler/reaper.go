package scheduler

import (
	"log"
	"time"

	sessionService "ppdb_backend/internals/features/admission/session/service"

	"ppdb_backend/internals/configs"
)

// StartSessionReaperScheduler menghapus sesi perangkat yang basi secara
// berkala supaya record mati tidak menumpuk di tabel.
func StartSessionReaperScheduler(mgr *sessionService.SessionManager) {
	go func() {
		interval := time.Duration(configs.GetEnvInt("SESSION_REAPER_INTERVAL_MINUTES", 60)) * time.Minute

		for {
			log.Println("[CLEANUP] Menjalankan pembersihan device_sessions...")

			if n, err := mgr.ReapStale(100); err != nil {
				log.Printf("[CLEANUP ERROR] Gagal hapus sesi basi: %v", err)
			} else if n > 0 {
				log.Printf("[CLEANUP] %d sesi basi dihapus", n)
			} else {
				log.Println("[CLEANUP] Tidak ada sesi yang memenuhi syarat dihapus")
			}

			time.Sleep(interval)
		}
	}()
}
