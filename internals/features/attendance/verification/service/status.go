package service

import (
	"time"

	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
	"presensiku_backend/internals/features/attendance/verification/model"
)

// DetermineStatus: klasifikasi berbasis waktu.
//   - verified_at <= start_time                ⇒ present
//   - verified_at <= start_time + threshold    ⇒ late
//   - selebihnya                               ⇒ pending
//
// CATATAN PRODUK: decision engine saat ini SELALU membuat record `pending`
// untuk aktor non-admin (kebijakan zero-trust, adjudikasi manusia). Helper ini
// tetap di-export — dipakai approval workflow & test — dan jadi titik keputusan
// produk kalau suatu saat auto-grading mau diaktifkan.
func DetermineStatus(session *sessionModel.SessionModel, verifiedAt time.Time) model.AttendanceStatus {
	if !verifiedAt.After(session.SessionStartTime) {
		return model.AttendancePresent
	}
	lateDeadline := session.SessionStartTime.Add(
		time.Duration(session.SessionLateThresholdMinutes) * time.Minute,
	)
	if !verifiedAt.After(lateDeadline) {
		return model.AttendanceLate
	}
	return model.AttendancePending
}
