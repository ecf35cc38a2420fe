package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/sessions/model"
)

var (
	ErrSessionNotFound = errors.New("sesi tidak ditemukan")
	ErrSessionFull     = errors.New("kapasitas sesi sudah penuh")
)

func FindSession(db *gorm.DB, id uuid.UUID) (*model.SessionModel, error) {
	var session model.SessionModel
	if err := db.Where("session_id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// IncrementSessionCount: atomik di SQL (bukan read-modify-write aplikasi) dan
// dijaga kapasitas — rows affected 0 berarti penuh.
func IncrementSessionCount(db *gorm.DB, sessionID uuid.UUID) error {
	res := db.Model(&model.SessionModel{}).
		Where("session_id = ?", sessionID).
		Where("session_capacity IS NULL OR session_current_count < session_capacity").
		Update("session_current_count", gorm.Expr("session_current_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionFull
	}
	return nil
}

// DecrementSessionCount: tidak pernah di bawah nol.
func DecrementSessionCount(db *gorm.DB, sessionID uuid.UUID) error {
	return db.Model(&model.SessionModel{}).
		Where("session_id = ? AND session_current_count > 0", sessionID).
		Update("session_current_count", gorm.Expr("session_current_count - 1")).Error
}

// ComputeScheduleStatus: status sesi menurut jam (dipakai scheduler periodik).
// Draft/cancelled tidak pernah diubah oleh waktu.
func ComputeScheduleStatus(session *model.SessionModel, now time.Time) model.SessionStatus {
	switch session.SessionStatus {
	case model.SessionDraft, model.SessionCancelled:
		return session.SessionStatus
	}
	if now.Before(session.SessionStartTime) {
		return model.SessionScheduled
	}
	if now.Before(session.SessionEndTime) {
		return model.SessionActive
	}
	return model.SessionCompleted
}
