package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionService "presensiku_backend/internals/features/attendance/sessions/service"
	"presensiku_backend/internals/features/attendance/verification/model"
	auditModel "presensiku_backend/internals/features/audits/model"
	auditService "presensiku_backend/internals/features/audits/service"
)

var (
	ErrAttendanceNotFound  = errors.New("record kehadiran tidak ditemukan")
	ErrInvalidTargetStatus = errors.New("status tujuan tidak valid")
)

// NotPendingError membawa status saat ini supaya caller/UI bisa menjelaskan
// kenapa operasinya ditolak.
type NotPendingError struct {
	CurrentStatus model.AttendanceStatus
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("record tidak lagi pending (status saat ini: %s)", e.CurrentStatus)
}

// ApprovalService: satu-satunya jalur mutasi status setelah record dibuat.
// State machine: approve/reject hanya legal dari `pending`; override legal
// dari status apapun termasuk terminal; tidak ada status yang auto-expire.
type ApprovalService struct {
	DB       *gorm.DB
	Recorder *auditService.Recorder
	Now      func() time.Time
}

func NewApprovalService(db *gorm.DB, recorder *auditService.Recorder) *ApprovalService {
	return &ApprovalService{DB: db, Recorder: recorder, Now: time.Now}
}

// Approve: pending → present|late.
func (s *ApprovalService) Approve(attendanceID, approverID uuid.UUID, newStatus model.AttendanceStatus, notes *string, meta auditService.ClientMeta) (*model.AttendanceModel, error) {
	if newStatus != model.AttendancePresent && newStatus != model.AttendanceLate {
		return nil, ErrInvalidTargetStatus
	}

	var att *model.AttendanceModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := lockAttendance(tx, attendanceID)
		if err != nil {
			return err
		}
		if a.AttendanceStatus != model.AttendancePending {
			return &NotPendingError{CurrentStatus: a.AttendanceStatus}
		}

		oldStatus := a.AttendanceStatus
		now := s.Now()
		a.AttendanceStatus = newStatus
		a.AttendanceApprovedBy = &approverID
		a.AttendanceApprovedAt = &now
		a.AttendanceAdminNotes = notes
		if err := tx.Save(a).Error; err != nil {
			return err
		}

		if err := s.writeTransitionLogs(tx, a, approverID, auditModel.AttendanceLogApproved,
			auditModel.AuditAttendanceApproved, oldStatus, newStatus, notes, meta); err != nil {
			return err
		}

		// present/late menambah counter sesi; atomik di SQL
		if err := sessionService.IncrementSessionCount(tx, a.AttendanceSessionID); err != nil {
			return err
		}

		att = a
		return nil
	})
	return att, err
}

// Reject: pending → rejected, alasan wajib.
func (s *ApprovalService) Reject(attendanceID, approverID uuid.UUID, reason string, meta auditService.ClientMeta) (*model.AttendanceModel, error) {
	var att *model.AttendanceModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := lockAttendance(tx, attendanceID)
		if err != nil {
			return err
		}
		if a.AttendanceStatus != model.AttendancePending {
			return &NotPendingError{CurrentStatus: a.AttendanceStatus}
		}

		oldStatus := a.AttendanceStatus
		now := s.Now()
		a.AttendanceStatus = model.AttendanceRejected
		a.AttendanceRejectionReason = &reason
		a.AttendanceApprovedBy = &approverID
		a.AttendanceApprovedAt = &now
		if err := tx.Save(a).Error; err != nil {
			return err
		}

		if err := s.writeTransitionLogs(tx, a, approverID, auditModel.AttendanceLogRejected,
			auditModel.AuditAttendanceRejected, oldStatus, model.AttendanceRejected, &reason, meta); err != nil {
			return err
		}

		att = a
		return nil
	})
	return att, err
}

// Override: admin-only, boleh dari status apapun ke status apapun (un-reject,
// downgrade present→absent, dst). Counter sesi disesuaikan kalau transisi
// melintasi batas {present,late} di salah satu arah.
func (s *ApprovalService) Override(attendanceID, approverID uuid.UUID, newStatus model.AttendanceStatus, notes *string, meta auditService.ClientMeta) (*model.AttendanceModel, error) {
	switch newStatus {
	case model.AttendancePending, model.AttendancePresent, model.AttendanceLate,
		model.AttendanceAbsent, model.AttendanceRejected:
	default:
		return nil, ErrInvalidTargetStatus
	}

	var att *model.AttendanceModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := lockAttendance(tx, attendanceID)
		if err != nil {
			return err
		}

		oldStatus := a.AttendanceStatus
		now := s.Now()
		a.AttendanceStatus = newStatus
		a.AttendanceApprovedBy = &approverID
		a.AttendanceApprovedAt = &now
		a.AttendanceAdminNotes = notes
		if err := tx.Save(a).Error; err != nil {
			return err
		}

		if err := s.writeTransitionLogs(tx, a, approverID, auditModel.AttendanceLogOverride,
			auditModel.AuditAttendanceOverridden, oldStatus, newStatus, notes, meta); err != nil {
			return err
		}

		wasCounted := oldStatus.CountsTowardSession()
		isCounted := newStatus.CountsTowardSession()
		if !wasCounted && isCounted {
			if err := sessionService.IncrementSessionCount(tx, a.AttendanceSessionID); err != nil {
				return err
			}
		} else if wasCounted && !isCounted {
			if err := sessionService.DecrementSessionCount(tx, a.AttendanceSessionID); err != nil {
				return err
			}
		}

		att = a
		return nil
	})
	return att, err
}

// Delete: hard delete by admin. AttendanceLog(`deleted`) HARUS ditulis sebelum
// row-nya hilang — urutan penting supaya foreign key log tidak dangling.
func (s *ApprovalService) Delete(attendanceID, actorID uuid.UUID, meta auditService.ClientMeta) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := lockAttendance(tx, attendanceID)
		if err != nil {
			return err
		}

		oldStatus := string(a.AttendanceStatus)
		if err := s.Recorder.WriteAttendanceLog(tx, a.AttendanceID, &actorID,
			auditModel.AttendanceLogDeleted, &oldStatus, nil, nil, meta); err != nil {
			return err
		}
		if err := s.Recorder.WriteAudit(tx, &actorID, auditModel.AuditAttendanceDeleted,
			"attendance", &a.AttendanceID,
			map[string]any{"status": a.AttendanceStatus, "session_id": a.AttendanceSessionID},
			nil, nil, meta); err != nil {
			return err
		}

		if a.AttendanceStatus.CountsTowardSession() {
			if err := sessionService.DecrementSessionCount(tx, a.AttendanceSessionID); err != nil {
				return err
			}
		}

		return tx.Delete(&model.AttendanceModel{}, "attendance_id = ?", a.AttendanceID).Error
	})
}

func (s *ApprovalService) writeTransitionLogs(
	tx *gorm.DB,
	a *model.AttendanceModel,
	approverID uuid.UUID,
	logAction auditModel.AttendanceLogAction,
	auditAction string,
	oldStatus, newStatus model.AttendanceStatus,
	notes *string,
	meta auditService.ClientMeta,
) error {
	oldStr, newStr := string(oldStatus), string(newStatus)
	if err := s.Recorder.WriteAttendanceLog(tx, a.AttendanceID, &approverID,
		logAction, &oldStr, &newStr, notes, meta); err != nil {
		return err
	}
	return s.Recorder.WriteAudit(tx, &approverID, auditAction,
		"attendance", &a.AttendanceID,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus},
		notes, meta)
}

func lockAttendance(tx *gorm.DB, attendanceID uuid.UUID) (*model.AttendanceModel, error) {
	var a model.AttendanceModel
	if err := tx.Where("attendance_id = ?", attendanceID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &a, nil
}
