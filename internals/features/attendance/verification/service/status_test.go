package service

import (
	"testing"
	"time"

	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
	"presensiku_backend/internals/features/attendance/verification/model"
)

func TestDetermineStatus(t *testing.T) {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	session := &sessionModel.SessionModel{
		SessionStartTime:            start,
		SessionEndTime:              start.Add(2 * time.Hour),
		SessionLateThresholdMinutes: 15,
	}

	tests := []struct {
		name       string
		verifiedAt time.Time
		want       model.AttendanceStatus
	}{
		{"well before start", start.Add(-30 * time.Minute), model.AttendancePresent},
		{"exactly at start", start, model.AttendancePresent},
		{"one second late", start.Add(time.Second), model.AttendanceLate},
		{"inside grace window", start.Add(10 * time.Minute), model.AttendanceLate},
		{"exactly at deadline", start.Add(15 * time.Minute), model.AttendanceLate},
		{"past deadline", start.Add(15*time.Minute + time.Second), model.AttendancePending},
		{"very late", start.Add(time.Hour), model.AttendancePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineStatus(session, tt.verifiedAt); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComposeMethod(t *testing.T) {
	tests := []struct {
		name                   string
		qr, face, gps, webauthn bool
		want                   string
	}{
		{"nothing", false, false, false, false, "manual"},
		{"qr only", true, false, false, false, "qr"},
		{"qr face gps", true, true, true, false, "qr_face_gps"},
		{"qr gps without face", true, false, true, false, "qr_gps"},
		{"everything", true, true, true, true, "qr_face_gps_webauthn"},
		{"face only", false, true, false, false, "face"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composeMethod(tt.qr, tt.face, tt.gps, tt.webauthn); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
