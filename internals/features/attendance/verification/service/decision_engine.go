package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"presensiku_backend/internals/constants"
	biometricService "presensiku_backend/internals/features/attendance/biometrics/service"
	qrService "presensiku_backend/internals/features/attendance/qr_tokens/service"
	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
	sessionService "presensiku_backend/internals/features/attendance/sessions/service"
	"presensiku_backend/internals/features/attendance/verification/model"
	auditModel "presensiku_backend/internals/features/audits/model"
	auditService "presensiku_backend/internals/features/audits/service"
)

var (
	ErrDuplicateAttendance    = errors.New("kehadiran untuk sesi ini sudah tercatat")
	ErrFaceVerificationFailed = errors.New("verifikasi wajah gagal")
	ErrSessionNotOpen         = errors.New("sesi tidak menerima check-in")
	ErrInvalidCoordinates     = errors.New("koordinat lokasi di luar jangkauan valid")
)

// Aktor eksplisit di setiap operasi core — tidak ada "current user" global.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return constants.IsAdminRole(a.Role)
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type VerifyInput struct {
	SessionID      uuid.UUID
	QRCode         string // kosong = flow tanpa QR (face-only re-entry)
	FaceDescriptor []float64
	Location       *Coordinates
	WebauthnUsed   bool
	EntryType      model.AttendanceEntryType
}

// AttendanceEngine mengubah sinyal klien yang tidak dipercaya (kode QR,
// descriptor wajah, koordinat GPS) menjadi record kehadiran yang auditable.
type AttendanceEngine struct {
	DB       *gorm.DB
	Tokens   *qrService.QRTokenService
	Matcher  *biometricService.MatcherService
	Recorder *auditService.Recorder
	Now      func() time.Time
}

func NewAttendanceEngine(
	db *gorm.DB,
	tokens *qrService.QRTokenService,
	matcher *biometricService.MatcherService,
	recorder *auditService.Recorder,
) *AttendanceEngine {
	return &AttendanceEngine{
		DB:       db,
		Tokens:   tokens,
		Matcher:  matcher,
		Recorder: recorder,
		Now:      time.Now,
	}
}

// fraudSignal yang terkumpul selama transaksi; ditulis SETELAH transaksi
// selesai supaya tetap tersimpan walau transaksinya rollback, dan tidak ada
// tulisan koneksi utama di tengah transaksi yang masih terbuka.
type fraudSignal struct {
	action      string
	subjectType string
	subjectID   uuid.UUID
	details     map[string]any
}

// Verify menjalankan gate berurutan:
//  1. token gate (hard)   2. duplicate gate (hard, + fraud signal)
//  3. biometric gate (hard kalau descriptor dikirim, + fraud signal)
//  4. geofence (ADVISORY: dicatat + fraud signal, tidak memblokir)
//  5. verification method tag   6. kebijakan status   7. persist + logs
//
// Step 2–7 berjalan dalam satu transaksi; unique index (user, session) di
// storage jadi penentu akhir untuk race dua submit bersamaan. Fraud signal
// dari dalam gate ditulis setelah transaksi selesai — rollback record
// kehadiran TIDAK boleh ikut menghapus jejak fraud.
func (e *AttendanceEngine) Verify(actor Actor, input VerifyInput, meta auditService.ClientMeta) (*model.AttendanceModel, *biometricService.VerifyResult, error) {
	now := e.Now()

	if input.Location != nil {
		if input.Location.Latitude < -90 || input.Location.Latitude > 90 ||
			input.Location.Longitude < -180 || input.Location.Longitude > 180 {
			return nil, nil, ErrInvalidCoordinates
		}
	}

	// ── Gate 1: token ───────────────────────────────────────────────
	var session *sessionModel.SessionModel
	var tokenID *uuid.UUID
	if input.QRCode != "" {
		token, ses, err := e.Tokens.Validate(input.QRCode, input.SessionID)
		if err != nil {
			if errors.Is(err, qrService.ErrInvalidQRToken) {
				e.Recorder.WriteFraudSignal(e.DB, &actor.UserID, auditModel.AuditFraudInvalidQRToken,
					"session", &input.SessionID,
					map[string]any{"code_length": len(input.QRCode)}, meta)
			}
			return nil, nil, err
		}
		session = ses
		tokenID = &token.QRTokenID
	} else {
		// Face-only re-entry: lokasi sesi langsung by id, tanpa scan ulang
		ses, err := sessionService.FindSession(e.DB, input.SessionID)
		if err != nil {
			return nil, nil, err
		}
		session = ses
	}

	if !session.IsOpenForAttendance() {
		return nil, nil, ErrSessionNotOpen
	}

	entryType := input.EntryType
	if entryType == "" {
		entryType = model.AttendanceEntry
	}

	var attendance *model.AttendanceModel
	var faceResult *biometricService.VerifyResult
	var signals []fraudSignal

	txErr := e.DB.Transaction(func(tx *gorm.DB) error {
		// ── Gate 2: duplicate ───────────────────────────────────────
		// Klien yang sah tidak pernah submit dua kali setelah sukses,
		// jadi duplikat adalah fraud signal, bukan sekadar constraint.
		var existing model.AttendanceModel
		err := tx.Where(
			"attendance_user_id = ? AND attendance_session_id = ?",
			actor.UserID, input.SessionID,
		).First(&existing).Error
		if err == nil {
			signals = append(signals, fraudSignal{
				action:      auditModel.AuditFraudDuplicateAttendance,
				subjectType: "attendance",
				subjectID:   existing.AttendanceID,
				details: map[string]any{
					"existing_attendance_id": existing.AttendanceID,
					"session_id":             input.SessionID,
				},
			})
			return ErrDuplicateAttendance
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// ── Gate 3: biometrik (hanya kalau descriptor dikirim) ──────
		// Klien yang memilih bukti biometrik lalu gagal = sinyal
		// impersonation keyakinan tinggi ⇒ hard reject, tanpa record.
		if input.FaceDescriptor != nil {
			// tx dioper ke matcher supaya update statistik enrollment atomik
			// dengan record kehadirannya
			res, err := e.Matcher.Verify(tx, actor.UserID, input.FaceDescriptor)
			if err != nil {
				return err
			}
			faceResult = &res
			if !res.Match {
				if res.Reason == biometricService.VerifyReasonDecryptionFailure {
					// Ini masalah operasional (korupsi / rotasi kunci salah),
					// bukan cuma mismatch — operator perlu jejak terpisah.
					signals = append(signals, fraudSignal{
						action:      auditModel.AuditBiometricDecryptionFailure,
						subjectType: "user",
						subjectID:   actor.UserID,
						details:     map[string]any{"session_id": input.SessionID},
					})
				}
				signals = append(signals, fraudSignal{
					action:      auditModel.AuditFraudFaceMismatch,
					subjectType: "session",
					subjectID:   input.SessionID,
					details: map[string]any{
						"score":     res.Score,
						"threshold": res.Threshold,
						"reason":    res.Reason,
					},
				})
				return ErrFaceVerificationFailed
			}
		}

		// ── Gate 4: geofence (ADVISORY) ─────────────────────────────
		// GPS consumer tidak reliable; kegagalan dicatat sebagai bukti
		// + fraud signal, approval admin yang jadi backstop sebenarnya.
		gpsValid := false
		var lat, lng, distance *float64
		if input.Location != nil {
			geo := ValidateGeofence(
				input.Location.Latitude, input.Location.Longitude,
				session.SessionLatitude, session.SessionLongitude,
				session.SessionRadiusMeters,
			)
			gpsValid = geo.Valid
			latVal, lngVal, distVal := input.Location.Latitude, input.Location.Longitude, geo.DistanceMeters
			lat, lng, distance = &latVal, &lngVal, &distVal
			if !geo.Valid {
				signals = append(signals, fraudSignal{
					action:      auditModel.AuditFraudLocationSpoofing,
					subjectType: "session",
					subjectID:   input.SessionID,
					details: map[string]any{
						"distance_meters": geo.DistanceMeters,
						"radius_meters":   session.SessionRadiusMeters,
					},
				})
			}
		}

		// ── Step 5: verification method tag ─────────────────────────
		method := composeMethod(input.QRCode != "", faceResult != nil && faceResult.Match, gpsValid, input.WebauthnUsed)

		// ── Step 6: kebijakan status ────────────────────────────────
		// Default: SEMUA record baru `pending` (zero-trust, adjudikasi
		// manusia). Satu-satunya override: admin check-in dirinya
		// sendiri langsung `present`. DetermineStatus sengaja TIDAK
		// dipakai di sini — lihat catatan di status.go.
		status := model.AttendancePending
		if actor.IsAdmin() {
			status = model.AttendancePresent
		}

		// ── Step 7: persist + logs ──────────────────────────────────
		att := model.AttendanceModel{
			AttendanceUserID:             actor.UserID,
			AttendanceSessionID:          session.SessionID,
			AttendanceQRTokenID:          tokenID,
			AttendanceVerifiedAt:         now,
			AttendanceGPSValid:           gpsValid,
			AttendanceLatitude:           lat,
			AttendanceLongitude:          lng,
			AttendanceDistanceFromVenue:  distance,
			AttendanceIPAddress:          meta.IPAddress,
			AttendanceUserAgent:          meta.UserAgent,
			AttendanceVerificationMethod: method,
			AttendanceStatus:             status,
			AttendanceEntryType:          entryType,
		}
		if faceResult != nil {
			att.AttendanceFaceMatchScore = faceResult.Score
			att.AttendanceFaceMatch = faceResult.Match
		}

		if err := tx.Create(&att).Error; err != nil {
			if isUniqueViolation(err) {
				// Race dua submit bersamaan: yang kalah di unique index
				// tetap harus kelihatan sebagai duplicate ke caller.
				signals = append(signals, fraudSignal{
					action:      auditModel.AuditFraudDuplicateAttendance,
					subjectType: "session",
					subjectID:   input.SessionID,
					details:     map[string]any{"race": true, "session_id": input.SessionID},
				})
				return ErrDuplicateAttendance
			}
			return err
		}

		statusStr := string(status)
		if err := e.Recorder.WriteAttendanceLog(tx, att.AttendanceID, &actor.UserID,
			auditModel.AttendanceLogCreated, nil, &statusStr, nil, meta); err != nil {
			return err
		}
		if err := e.Recorder.WriteAudit(tx, &actor.UserID, auditModel.AuditAttendanceMarked,
			"attendance", &att.AttendanceID, nil, map[string]any{
				"session_id":          session.SessionID,
				"status":              status,
				"verification_method": method,
			}, nil, meta); err != nil {
			return err
		}

		if status.CountsTowardSession() {
			if err := sessionService.IncrementSessionCount(tx, session.SessionID); err != nil {
				return err
			}
		}

		attendance = &att
		return nil
	})

	// Ditulis di koneksi utama setelah transaksi selesai: jejak fraud tetap
	// ada walau record kehadirannya rollback (duplicate, sesi penuh, dst).
	for i := range signals {
		sig := signals[i]
		e.Recorder.WriteFraudSignal(e.DB, &actor.UserID, sig.action,
			sig.subjectType, &sig.subjectID, sig.details, meta)
	}

	if txErr != nil {
		return nil, faceResult, txErr
	}

	return attendance, faceResult, nil
}

func composeMethod(qr, face, gps, webauthn bool) string {
	parts := make([]string, 0, 4)
	if qr {
		parts = append(parts, "qr")
	}
	if face {
		parts = append(parts, "face")
	}
	if gps {
		parts = append(parts, "gps")
	}
	if webauthn {
		parts = append(parts, "webauthn")
	}
	if len(parts) == 0 {
		return "manual"
	}
	return strings.Join(parts, "_")
}

// isUniqueViolation: postgres 23505 (production) atau pesan sqlite (test).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
