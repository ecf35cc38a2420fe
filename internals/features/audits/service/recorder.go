package service

import (
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/audits/model"
)

// Meta perangkat/klien yang diseret ke semua log.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Recorder menulis audit_logs & attendance_logs. Semua method menerima *gorm.DB
// supaya bisa ikut transaksi pemanggil (engine/workflow).
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) WriteAttendanceLog(
	db *gorm.DB,
	attendanceID uuid.UUID,
	actorID *uuid.UUID,
	action model.AttendanceLogAction,
	oldStatus, newStatus *string,
	notes *string,
	meta ClientMeta,
) error {
	entry := model.AttendanceLogModel{
		AttendanceLogAttendanceID: attendanceID,
		AttendanceLogActorID:      actorID,
		AttendanceLogAction:       action,
		AttendanceLogOldStatus:    oldStatus,
		AttendanceLogNewStatus:    newStatus,
		AttendanceLogNotes:        notes,
		AttendanceLogIPAddress:    meta.IPAddress,
		AttendanceLogUserAgent:    meta.UserAgent,
	}
	return db.Create(&entry).Error
}

func (r *Recorder) WriteAudit(
	db *gorm.DB,
	actorID *uuid.UUID,
	action string,
	subjectType string,
	subjectID *uuid.UUID,
	oldValues, newValues any,
	notes *string,
	meta ClientMeta,
) error {
	entry := model.AuditLogModel{
		AuditLogActorID:   actorID,
		AuditLogAction:    action,
		AuditLogSubjectID: subjectID,
		AuditLogOldValues: marshalSnapshot(oldValues),
		AuditLogNewValues: marshalSnapshot(newValues),
		AuditLogIPAddress: meta.IPAddress,
		AuditLogUserAgent: meta.UserAgent,
		AuditLogNotes:     notes,
	}
	if subjectType != "" {
		entry.AuditLogSubjectType = &subjectType
	}
	return db.Create(&entry).Error
}

// WriteFraudSignal: fraud signal dicatat terlepas dari nasib request-nya.
// Ditulis dengan koneksi utama (bukan tx) setelah transaksi verifikasi
// selesai, supaya tetap tersimpan walau transaksinya di-rollback.
func (r *Recorder) WriteFraudSignal(
	db *gorm.DB,
	actorID *uuid.UUID,
	action string,
	subjectType string,
	subjectID *uuid.UUID,
	details any,
	meta ClientMeta,
) {
	if err := r.WriteAudit(db, actorID, action, subjectType, subjectID, nil, details, nil, meta); err != nil {
		log.Printf("[ERROR] Gagal tulis fraud signal %s: %v", action, err)
	}
}

func marshalSnapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := sonic.Marshal(v)
	if err != nil {
		log.Printf("[ERROR] Gagal marshal snapshot audit: %v", err)
		return nil
	}
	return datatypes.JSON(b)
}
