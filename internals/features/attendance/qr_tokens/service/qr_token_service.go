package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/qr_tokens/model"
	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
)

// Token QR berlaku maksimal 5 menit (atau sampai sesi berakhir, mana yang lebih dulu)
const TokenTTL = 5 * time.Minute

var (
	ErrInvalidQRToken  = errors.New("kode QR tidak valid, kadaluarsa, atau bukan untuk sesi ini")
	ErrSessionNotFound = errors.New("sesi tidak ditemukan")
	ErrSessionNotOpen  = errors.New("sesi tidak menerima check-in")
	ErrSessionHasEnded = errors.New("sesi sudah berakhir")
)

type QRTokenService struct {
	DB  *gorm.DB
	Now func() time.Time // injected clock supaya deterministik di test
}

func NewQRTokenService(db *gorm.DB) *QRTokenService {
	return &QRTokenService{DB: db, Now: time.Now}
}

// Issue menerbitkan token aktif baru untuk sesi. TIDAK menonaktifkan token lama
// (rotasi adalah operasi eksplisit terpisah).
func (s *QRTokenService) Issue(sessionID uuid.UUID) (*model.QRTokenModel, error) {
	var session sessionModel.SessionModel
	if err := s.DB.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !session.IsOpenForAttendance() {
		return nil, ErrSessionNotOpen
	}

	now := s.Now()
	if !now.Before(session.SessionEndTime) {
		return nil, ErrSessionHasEnded
	}

	expiresAt := now.Add(TokenTTL)
	if session.SessionEndTime.Before(expiresAt) {
		expiresAt = session.SessionEndTime
	}

	code, err := generateCode(sessionID, now)
	if err != nil {
		return nil, err
	}

	token := model.QRTokenModel{
		QRTokenSessionID: sessionID,
		QRTokenCode:      code,
		QRTokenExpiresAt: expiresAt,
		QRTokenIsActive:  true,
	}
	if err := s.DB.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate menonaktifkan SEMUA token aktif sesi lalu menerbitkan satu token baru.
// Race kecil dengan Validate diterima (lihat catatan di Validate).
func (s *QRTokenService) Rotate(sessionID uuid.UUID) (*model.QRTokenModel, error) {
	if err := s.DB.Model(&model.QRTokenModel{}).
		Where("qr_token_session_id = ? AND qr_token_is_active = ?", sessionID, true).
		Update("qr_token_is_active", false).Error; err != nil {
		return nil, err
	}
	return s.Issue(sessionID)
}

// Validate: valid hanya jika kode cocok + sesi cocok + masih aktif + belum kadaluarsa.
// Mengembalikan token DAN sesinya sekalian supaya caller tidak perlu query kedua.
// Token yang dinonaktifkan rotasi beberapa ms setelah dibaca di sini tetap dianggap
// valid — jendela 5 menit membuat race ini tidak berbahaya.
func (s *QRTokenService) Validate(code string, sessionID uuid.UUID) (*model.QRTokenModel, *sessionModel.SessionModel, error) {
	if code == "" {
		return nil, nil, ErrInvalidQRToken
	}

	var token model.QRTokenModel
	err := s.DB.Where(
		"qr_token_code = ? AND qr_token_session_id = ? AND qr_token_is_active = ?",
		code, sessionID, true,
	).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidQRToken
		}
		return nil, nil, err
	}

	if !s.Now().Before(token.QRTokenExpiresAt) {
		return nil, nil, ErrInvalidQRToken
	}

	var session sessionModel.SessionModel
	if err := s.DB.Where("session_id = ?", token.QRTokenSessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidQRToken
		}
		return nil, nil, err
	}

	return &token, &session, nil
}

// generateCode: prefix sesi + timestamp + 18 byte random. Tidak perlu bisa
// di-parse balik, yang penting unik & tidak bisa ditebak.
func generateCode(sessionID uuid.UUID, now time.Time) (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	raw := fmt.Sprintf("%s.%d.%s",
		sessionID.String()[:8],
		now.UnixNano(),
		base64.RawURLEncoding.EncodeToString(buf),
	)
	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}
