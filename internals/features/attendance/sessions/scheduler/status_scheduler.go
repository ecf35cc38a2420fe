package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/sessions/model"
	"presensiku_backend/internals/features/attendance/sessions/service"
)

// StartSessionStatusScheduler menjalankan transisi status sesi berbasis jam:
// scheduled→active saat start_time lewat, active→completed saat end_time lewat.
// Keputusan per sesi lewat ComputeScheduleStatus; update dijaga status lama di
// WHERE supaya tidak menimpa perubahan manual di sela-sela tick.
// Caller eksternal murni — hanya menyentuh kontrak storage, bukan engine.
func StartSessionStatusScheduler(db *gorm.DB) {
	go func() {
		for {
			tickSessionStatuses(db, time.Now())
			time.Sleep(1 * time.Minute)
		}
	}()
}

func tickSessionStatuses(db *gorm.DB, now time.Time) {
	var sessions []model.SessionModel
	if err := db.
		Where("session_status IN ?", []model.SessionStatus{model.SessionScheduled, model.SessionActive}).
		Find(&sessions).Error; err != nil {
		log.Printf("[SCHEDULER ERROR] Gagal ambil sesi untuk transisi status: %v", err)
		return
	}

	moved := 0
	for i := range sessions {
		next := service.ComputeScheduleStatus(&sessions[i], now)
		if next == sessions[i].SessionStatus {
			continue
		}
		if err := db.Model(&model.SessionModel{}).
			Where("session_id = ? AND session_status = ?", sessions[i].SessionID, sessions[i].SessionStatus).
			Update("session_status", next).Error; err != nil {
			log.Printf("[SCHEDULER ERROR] Gagal update status sesi %s: %v", sessions[i].SessionID, err)
			continue
		}
		moved++
	}
	if moved > 0 {
		log.Printf("[SCHEDULER] %d sesi pindah status", moved)
	}
}
