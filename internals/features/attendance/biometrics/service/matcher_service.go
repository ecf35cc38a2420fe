package service

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/biometrics/model"
)

// Descriptor wajah = embedding 128 dimensi dari sisi klien
const DescriptorLength = 128

// Threshold default kalau enrollment tidak menentukan sendiri
const DefaultConfidenceThreshold = 0.7

var (
	ErrInvalidDescriptor = errors.New("descriptor wajah harus 128 angka valid")
	ErrAlreadyEnrolled   = errors.New("user sudah punya enrollment wajah aktif, gunakan re-enroll")
	ErrConsentRequired   = errors.New("user belum memberikan consent penyimpanan data biometrik")
	ErrNoEnrollment      = errors.New("user belum punya enrollment wajah aktif")
)

// Alasan hasil verifikasi, dipakai untuk audit forensik (BUKAN dibedakan ke caller)
const (
	VerifyReasonMatched           = "matched"
	VerifyReasonBelowThreshold    = "below_threshold"
	VerifyReasonInvalidDescriptor = "invalid_descriptor"
	VerifyReasonNoEnrollment      = "no_active_enrollment"
	VerifyReasonDecryptionFailure = "decryption_failure"
)

type VerifyResult struct {
	Match     bool    `json:"match"`
	Score     float64 `json:"score"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
	Reason    string  `json:"reason"`
}

type MatcherService struct {
	DB     *gorm.DB
	Crypto *DescriptorCrypto
	Now    func() time.Time
}

func NewMatcherService(db *gorm.DB, crypto *DescriptorCrypto) *MatcherService {
	return &MatcherService{DB: db, Crypto: crypto, Now: time.Now}
}

// ValidateDescriptor: panjang tepat 128 & semua elemen angka finite.
func ValidateDescriptor(descriptor []float64) error {
	if len(descriptor) != DescriptorLength {
		return ErrInvalidDescriptor
	}
	for _, v := range descriptor {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidDescriptor
		}
	}
	return nil
}

// Enroll mendaftarkan descriptor baru. Satu enrollment aktif per user.
func (s *MatcherService) Enroll(userID uuid.UUID, descriptor []float64, consentGiven bool, imageRef *string) (*model.FaceEnrollmentModel, error) {
	if !consentGiven {
		return nil, ErrConsentRequired
	}
	return s.enroll(s.DB, userID, descriptor, imageRef)
}

// enroll: pre-check (pesan ramah) + insert. Penentu akhir untuk dua enroll
// bersamaan adalah partial unique index di storage (1 baris aktif per user).
func (s *MatcherService) enroll(db *gorm.DB, userID uuid.UUID, descriptor []float64, imageRef *string) (*model.FaceEnrollmentModel, error) {
	if err := ValidateDescriptor(descriptor); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&model.FaceEnrollmentModel{}).
		Where("face_enrollment_user_id = ? AND face_enrollment_requires_reverification = ?", userID, false).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyEnrolled
	}

	blob, keyID, err := s.Crypto.Encrypt(descriptor)
	if err != nil {
		return nil, err
	}

	enrollment := model.FaceEnrollmentModel{
		FaceEnrollmentUserID:              userID,
		FaceEnrollmentDescriptorEncrypted: blob,
		FaceEnrollmentEncryptionKeyID:     keyID,
		FaceEnrollmentConfidenceThreshold: DefaultConfidenceThreshold,
		FaceEnrollmentImageURL:            imageRef,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	return &enrollment, nil
}

// ReEnroll: tandai enrollment aktif lama requires_reverification=true (retired,
// tidak dihapus — untuk audit), lalu enroll baru. Satu transaksi: kalau insert
// gagal, retire ikut batal dan user tidak kehilangan enrollment aktifnya.
func (s *MatcherService) ReEnroll(userID uuid.UUID, descriptor []float64, imageRef *string) (*model.FaceEnrollmentModel, error) {
	if err := ValidateDescriptor(descriptor); err != nil {
		return nil, err
	}

	var enrollment *model.FaceEnrollmentModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FaceEnrollmentModel{}).
			Where("face_enrollment_user_id = ? AND face_enrollment_requires_reverification = ?", userID, false).
			Update("face_enrollment_requires_reverification", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Belum pernah enroll: consent tidak bisa diimplikasikan dari apa-apa
			return ErrNoEnrollment
		}

		e, err := s.enroll(tx, userID, descriptor, imageRef)
		if err != nil {
			return err
		}
		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Verify membandingkan descriptor live dengan enrollment aktif user.
// db dioper caller supaya update statistik ikut transaksi pemanggil (engine).
// Fail closed: input rusak / tidak ada enrollment / dekripsi gagal semuanya
// menghasilkan match=false score=0, dibedakan hanya lewat Reason + log.
func (s *MatcherService) Verify(db *gorm.DB, userID uuid.UUID, live []float64) (VerifyResult, error) {
	failed := VerifyResult{Match: false, Score: 0, Threshold: DefaultConfidenceThreshold}

	if err := ValidateDescriptor(live); err != nil {
		log.Printf("[WARN] face verify user=%s: descriptor live tidak valid", userID)
		failed.Reason = VerifyReasonInvalidDescriptor
		return failed, nil
	}

	var enrollment model.FaceEnrollmentModel
	err := db.Where(
		"face_enrollment_user_id = ? AND face_enrollment_requires_reverification = ?",
		userID, false,
	).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[WARN] face verify user=%s: tidak ada enrollment aktif", userID)
			failed.Reason = VerifyReasonNoEnrollment
			return failed, nil
		}
		return failed, err
	}
	failed.Threshold = enrollment.FaceEnrollmentConfidenceThreshold

	enrolled, err := s.Crypto.Decrypt(enrollment.FaceEnrollmentDescriptorEncrypted, enrollment.FaceEnrollmentEncryptionKeyID)
	if err != nil {
		// Korup atau mismatch rotasi kunci: fail closed, log untuk operator.
		log.Printf("[ERROR] face verify user=%s enrollment=%s key_id=%d: dekripsi gagal",
			userID, enrollment.FaceEnrollmentID, enrollment.FaceEnrollmentEncryptionKeyID)
		failed.Reason = VerifyReasonDecryptionFailure
		return failed, nil
	}

	distance := euclideanDistance(enrolled, live)
	score := math.Max(0, 1-distance/2)
	threshold := enrollment.FaceEnrollmentConfidenceThreshold

	result := VerifyResult{
		Match:     score >= threshold,
		Score:     score,
		Distance:  distance,
		Threshold: threshold,
		Reason:    VerifyReasonBelowThreshold,
	}

	if result.Match {
		result.Reason = VerifyReasonMatched
		// Statistik HANYA di-update saat sukses; kegagalan tidak boleh bocor
		// ke kolom pemakaian (near-miss jangan kelihatan dari sini).
		now := s.Now()
		if err := db.Model(&model.FaceEnrollmentModel{}).
			Where("face_enrollment_id = ?", enrollment.FaceEnrollmentID).
			Updates(map[string]any{
				"face_enrollment_verification_count": gorm.Expr("face_enrollment_verification_count + 1"),
				"face_enrollment_last_verified_at":   now,
			}).Error; err != nil {
			return result, err
		}
	}

	return result, nil
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// isUniqueViolation: postgres 23505 (production) atau pesan sqlite (test).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
