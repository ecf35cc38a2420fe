package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
	"presensiku_backend/internals/features/attendance/verification/model"
	auditModel "presensiku_backend/internals/features/audits/model"
	auditService "presensiku_backend/internals/features/audits/service"
)

var testMeta = auditService.ClientMeta{IPAddress: "203.0.113.7", UserAgent: "presensiku-test"}

func newTestApprovals(t *testing.T) *ApprovalService {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&sessionModel.SessionModel{},
		&model.AttendanceModel{},
		&auditModel.AttendanceLogModel{},
		&auditModel.AuditLogModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewApprovalService(db, auditService.NewRecorder())
}

func seedAttendance(t *testing.T, db *gorm.DB, status model.AttendanceStatus) (*model.AttendanceModel, *sessionModel.SessionModel) {
	t.Helper()
	now := time.Now()
	session := sessionModel.SessionModel{
		SessionOrganizationID: uuid.New(),
		SessionTitle:          "Upacara Pagi",
		SessionStartTime:      now.Add(-time.Hour),
		SessionEndTime:        now.Add(time.Hour),
		SessionLatitude:       -6.2,
		SessionLongitude:      106.8,
		SessionRadiusMeters:   100,
		SessionStatus:         sessionModel.SessionActive,
		SessionCreatedBy:      uuid.New(),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	if status.CountsTowardSession() {
		session.SessionCurrentCount = 1
		db.Model(&session).Update("session_current_count", 1)
	}

	att := model.AttendanceModel{
		AttendanceUserID:             uuid.New(),
		AttendanceSessionID:          session.SessionID,
		AttendanceVerifiedAt:         now,
		AttendanceVerificationMethod: "qr",
		AttendanceStatus:             status,
		AttendanceEntryType:          model.AttendanceEntry,
	}
	if err := db.Create(&att).Error; err != nil {
		t.Fatalf("create attendance: %v", err)
	}
	return &att, &session
}

func sessionCount(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var s sessionModel.SessionModel
	if err := db.First(&s, "session_id = ?", id).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	return s.SessionCurrentCount
}

func TestApprovePendingToPresent(t *testing.T) {
	svc := newTestApprovals(t)
	att, session := seedAttendance(t, svc.DB, model.AttendancePending)
	approver := uuid.New()
	notes := "bukti lengkap"

	updated, err := svc.Approve(att.AttendanceID, approver, model.AttendancePresent, &notes, testMeta)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.AttendanceStatus != model.AttendancePresent {
		t.Fatalf("status = %s, want present", updated.AttendanceStatus)
	}
	if updated.AttendanceApprovedBy == nil || *updated.AttendanceApprovedBy != approver {
		t.Fatal("approved_by belum terisi")
	}
	if updated.AttendanceApprovedAt == nil {
		t.Fatal("approved_at belum terisi")
	}
	if got := sessionCount(t, svc.DB, session.SessionID); got != 1 {
		t.Fatalf("counter = %d, want 1", got)
	}

	var logs int64
	svc.DB.Model(&auditModel.AttendanceLogModel{}).
		Where("attendance_log_attendance_id = ? AND attendance_log_action = ?",
			att.AttendanceID, auditModel.AttendanceLogApproved).
		Count(&logs)
	if logs != 1 {
		t.Fatalf("approval logs = %d, want 1", logs)
	}
}

func TestApproveRejectsInvalidTargets(t *testing.T) {
	svc := newTestApprovals(t)
	att, _ := seedAttendance(t, svc.DB, model.AttendancePending)

	for _, target := range []model.AttendanceStatus{
		model.AttendancePending,
		model.AttendanceAbsent,
		model.AttendanceRejected,
		model.AttendanceStatus("bogus"),
	} {
		if _, err := svc.Approve(att.AttendanceID, uuid.New(), target, nil, testMeta); !errors.Is(err, ErrInvalidTargetStatus) {
			t.Fatalf("target %s: expected ErrInvalidTargetStatus, got %v", target, err)
		}
	}
}

func TestApproveNonPendingReturnsCurrentStatus(t *testing.T) {
	svc := newTestApprovals(t)
	att, _ := seedAttendance(t, svc.DB, model.AttendanceRejected)

	_, err := svc.Approve(att.AttendanceID, uuid.New(), model.AttendancePresent, nil, testMeta)
	var notPending *NotPendingError
	if !errors.As(err, &notPending) {
		t.Fatalf("expected NotPendingError, got %v", err)
	}
	if notPending.CurrentStatus != model.AttendanceRejected {
		t.Fatalf("current status = %s, want rejected", notPending.CurrentStatus)
	}
}

func TestApproveUnknownAttendance(t *testing.T) {
	svc := newTestApprovals(t)
	if _, err := svc.Approve(uuid.New(), uuid.New(), model.AttendancePresent, nil, testMeta); !errors.Is(err, ErrAttendanceNotFound) {
		t.Fatalf("expected ErrAttendanceNotFound, got %v", err)
	}
}

func TestRejectPending(t *testing.T) {
	svc := newTestApprovals(t)
	att, session := seedAttendance(t, svc.DB, model.AttendancePending)

	updated, err := svc.Reject(att.AttendanceID, uuid.New(), "wajah tidak cocok dengan foto", testMeta)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.AttendanceStatus != model.AttendanceRejected {
		t.Fatalf("status = %s, want rejected", updated.AttendanceStatus)
	}
	if updated.AttendanceRejectionReason == nil || *updated.AttendanceRejectionReason == "" {
		t.Fatal("rejection reason belum terisi")
	}
	// rejected tidak pernah menyentuh counter
	if got := sessionCount(t, svc.DB, session.SessionID); got != 0 {
		t.Fatalf("counter = %d, want 0", got)
	}
}

func TestRejectNonPending(t *testing.T) {
	svc := newTestApprovals(t)
	att, _ := seedAttendance(t, svc.DB, model.AttendancePresent)

	_, err := svc.Reject(att.AttendanceID, uuid.New(), "terlambat direview", testMeta)
	var notPending *NotPendingError
	if !errors.As(err, &notPending) {
		t.Fatalf("expected NotPendingError, got %v", err)
	}
}

func TestOverrideCounterTransitions(t *testing.T) {
	svc := newTestApprovals(t)

	t.Run("present to absent decrements", func(t *testing.T) {
		att, session := seedAttendance(t, svc.DB, model.AttendancePresent)

		updated, err := svc.Override(att.AttendanceID, uuid.New(), model.AttendanceAbsent, nil, testMeta)
		if err != nil {
			t.Fatalf("override: %v", err)
		}
		if updated.AttendanceStatus != model.AttendanceAbsent {
			t.Fatalf("status = %s, want absent", updated.AttendanceStatus)
		}
		if got := sessionCount(t, svc.DB, session.SessionID); got != 0 {
			t.Fatalf("counter = %d, want 0", got)
		}
	})

	t.Run("rejected to present increments (un-reject)", func(t *testing.T) {
		att, session := seedAttendance(t, svc.DB, model.AttendanceRejected)

		if _, err := svc.Override(att.AttendanceID, uuid.New(), model.AttendancePresent, nil, testMeta); err != nil {
			t.Fatalf("override: %v", err)
		}
		if got := sessionCount(t, svc.DB, session.SessionID); got != 1 {
			t.Fatalf("counter = %d, want 1", got)
		}
	})

	t.Run("present to late keeps counter", func(t *testing.T) {
		att, session := seedAttendance(t, svc.DB, model.AttendancePresent)

		if _, err := svc.Override(att.AttendanceID, uuid.New(), model.AttendanceLate, nil, testMeta); err != nil {
			t.Fatalf("override: %v", err)
		}
		if got := sessionCount(t, svc.DB, session.SessionID); got != 1 {
			t.Fatalf("counter = %d, want 1", got)
		}
	})

	t.Run("invalid target status", func(t *testing.T) {
		att, _ := seedAttendance(t, svc.DB, model.AttendancePending)
		if _, err := svc.Override(att.AttendanceID, uuid.New(), model.AttendanceStatus("bogus"), nil, testMeta); !errors.Is(err, ErrInvalidTargetStatus) {
			t.Fatalf("expected ErrInvalidTargetStatus, got %v", err)
		}
	})
}

func TestOverrideWritesAuditTrail(t *testing.T) {
	svc := newTestApprovals(t)
	att, _ := seedAttendance(t, svc.DB, model.AttendancePending)

	if _, err := svc.Override(att.AttendanceID, uuid.New(), model.AttendanceLate, nil, testMeta); err != nil {
		t.Fatalf("override: %v", err)
	}

	var entry auditModel.AttendanceLogModel
	err := svc.DB.Where(
		"attendance_log_attendance_id = ? AND attendance_log_action = ?",
		att.AttendanceID, auditModel.AttendanceLogOverride,
	).First(&entry).Error
	if err != nil {
		t.Fatalf("override log tidak ketemu: %v", err)
	}
	if entry.AttendanceLogOldStatus == nil || *entry.AttendanceLogOldStatus != "pending" {
		t.Fatalf("old status = %v, want pending", entry.AttendanceLogOldStatus)
	}
	if entry.AttendanceLogNewStatus == nil || *entry.AttendanceLogNewStatus != "late" {
		t.Fatalf("new status = %v, want late", entry.AttendanceLogNewStatus)
	}
}

func TestDeleteWritesLogBeforeRemoval(t *testing.T) {
	svc := newTestApprovals(t)
	att, session := seedAttendance(t, svc.DB, model.AttendancePresent)

	if err := svc.Delete(att.AttendanceID, uuid.New(), testMeta); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Row hilang...
	var rows int64
	svc.DB.Model(&model.AttendanceModel{}).
		Where("attendance_id = ?", att.AttendanceID).Count(&rows)
	if rows != 0 {
		t.Fatalf("attendance rows = %d, want 0", rows)
	}

	// ...tapi jejaknya tetap ada, dengan status terakhir terekam
	var entry auditModel.AttendanceLogModel
	err := svc.DB.Where(
		"attendance_log_attendance_id = ? AND attendance_log_action = ?",
		att.AttendanceID, auditModel.AttendanceLogDeleted,
	).First(&entry).Error
	if err != nil {
		t.Fatalf("delete log tidak ketemu: %v", err)
	}
	if entry.AttendanceLogOldStatus == nil || *entry.AttendanceLogOldStatus != "present" {
		t.Fatalf("old status = %v, want present", entry.AttendanceLogOldStatus)
	}

	// Counter ikut turun karena record yang dihapus berstatus present
	if got := sessionCount(t, svc.DB, session.SessionID); got != 0 {
		t.Fatalf("counter = %d, want 0", got)
	}
}

func TestDeleteUnknownAttendance(t *testing.T) {
	svc := newTestApprovals(t)
	if err := svc.Delete(uuid.New(), uuid.New(), testMeta); !errors.Is(err, ErrAttendanceNotFound) {
		t.Fatalf("expected ErrAttendanceNotFound, got %v", err)
	}
}
