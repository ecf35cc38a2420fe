package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/qr_tokens/service"
	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
)

// StartQRRotationScheduler merotasi token QR semua sesi aktif tiap interval TTL.
// Race rotasi vs validate diterima (lihat catatan di QRTokenService.Validate).
func StartQRRotationScheduler(db *gorm.DB, tokens *service.QRTokenService) {
	go func() {
		for {
			time.Sleep(service.TokenTTL)

			now := time.Now()
			var sessions []sessionModel.SessionModel
			if err := db.
				Where("session_status = ? AND session_end_time > ?", sessionModel.SessionActive, now).
				Find(&sessions).Error; err != nil {
				log.Printf("[SCHEDULER ERROR] Gagal ambil sesi aktif untuk rotasi QR: %v", err)
				continue
			}

			rotated := 0
			for i := range sessions {
				if _, err := tokens.Rotate(sessions[i].SessionID); err != nil {
					log.Printf("[SCHEDULER ERROR] Rotasi QR sesi %s gagal: %v", sessions[i].SessionID, err)
					continue
				}
				rotated++
			}
			if rotated > 0 {
				log.Printf("[SCHEDULER] Token QR dirotasi untuk %d sesi aktif", rotated)
			}
		}
	}()
}
