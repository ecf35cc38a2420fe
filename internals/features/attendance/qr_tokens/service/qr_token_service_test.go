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

	"presensiku_backend/internals/features/attendance/qr_tokens/model"
	sessionModel "presensiku_backend/internals/features/attendance/sessions/model"
)

func newTestService(t *testing.T) *QRTokenService {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&sessionModel.SessionModel{}, &model.QRTokenModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewQRTokenService(db)
}

func createSession(t *testing.T, db *gorm.DB, start, end time.Time) *sessionModel.SessionModel {
	t.Helper()
	s := sessionModel.SessionModel{
		SessionOrganizationID: uuid.New(),
		SessionTitle:          "Rapat Bulanan",
		SessionStartTime:      start,
		SessionEndTime:        end,
		SessionLatitude:       -6.2,
		SessionLongitude:      106.8,
		SessionRadiusMeters:   100,
		SessionStatus:         sessionModel.SessionActive,
		SessionCreatedBy:      uuid.New(),
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &s
}

func TestIssueUsesTokenTTL(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))

	token, err := svc.Issue(session.SessionID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.QRTokenCode == "" {
		t.Fatal("kode token kosong")
	}
	if !token.QRTokenIsActive {
		t.Fatal("token baru harus aktif")
	}
	if want := now.Add(TokenTTL); !token.QRTokenExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", token.QRTokenExpiresAt, want)
	}
}

func TestIssueClampsExpiryToSessionEnd(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	// Sesi berakhir 2 menit lagi, lebih dekat dari TTL 5 menit
	end := now.Add(2 * time.Minute)
	session := createSession(t, svc.DB, now.Add(-time.Hour), end)

	token, err := svc.Issue(session.SessionID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !token.QRTokenExpiresAt.Equal(end) {
		t.Fatalf("expires_at = %v, want session end %v", token.QRTokenExpiresAt, end)
	}
}

func TestIssueOnEndedSession(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-2*time.Hour), now.Add(-time.Hour))

	if _, err := svc.Issue(session.SessionID); !errors.Is(err, ErrSessionHasEnded) {
		t.Fatalf("expected ErrSessionHasEnded, got %v", err)
	}
}

func TestIssueOnClosedSession(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	for _, status := range []sessionModel.SessionStatus{
		sessionModel.SessionDraft,
		sessionModel.SessionCompleted,
		sessionModel.SessionCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))
			if err := svc.DB.Model(&sessionModel.SessionModel{}).
				Where("session_id = ?", session.SessionID).
				Update("session_status", status).Error; err != nil {
				t.Fatalf("set status: %v", err)
			}

			if _, err := svc.Issue(session.SessionID); !errors.Is(err, ErrSessionNotOpen) {
				t.Fatalf("expected ErrSessionNotOpen, got %v", err)
			}
		})
	}
}

func TestIssueUnknownSession(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Issue(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestIssueDoesNotDeactivateOldTokens(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))

	first, err := svc.Issue(session.SessionID)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	if _, err := svc.Issue(session.SessionID); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	// Kedua token masih valid — Issue bukan Rotate
	if _, _, err := svc.Validate(first.QRTokenCode, session.SessionID); err != nil {
		t.Fatalf("token pertama harus tetap valid: %v", err)
	}
}

func TestRotateDeactivatesAllActiveTokens(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))

	first, _ := svc.Issue(session.SessionID)
	second, _ := svc.Issue(session.SessionID)

	rotated, err := svc.Rotate(session.SessionID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}

	for _, old := range []*model.QRTokenModel{first, second} {
		if _, _, err := svc.Validate(old.QRTokenCode, session.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("token lama harus invalid setelah rotate, got %v", err)
		}
	}

	_, ses, err := svc.Validate(rotated.QRTokenCode, session.SessionID)
	if err != nil {
		t.Fatalf("token hasil rotate harus valid: %v", err)
	}
	if ses.SessionID != session.SessionID {
		t.Fatal("Validate harus mengembalikan sesi yang sama")
	}
}

func TestValidateRejections(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))
	otherSession := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))

	token, err := svc.Issue(session.SessionID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("empty code", func(t *testing.T) {
		if _, _, err := svc.Validate("", session.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		if _, _, err := svc.Validate("bukan-kode", session.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("wrong session", func(t *testing.T) {
		if _, _, err := svc.Validate(token.QRTokenCode, otherSession.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		svc.Now = func() time.Time { return now.Add(TokenTTL + time.Second) }
		defer func() { svc.Now = func() time.Time { return now } }()

		if _, _, err := svc.Validate(token.QRTokenCode, session.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		svc.Now = func() time.Time { return token.QRTokenExpiresAt }
		defer func() { svc.Now = func() time.Time { return now } }()

		// Batas eksklusif: tepat di expires_at sudah tidak valid
		if _, _, err := svc.Validate(token.QRTokenCode, session.SessionID); !errors.Is(err, ErrInvalidQRToken) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestGeneratedCodesAreUnique(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	svc.Now = func() time.Time { return now }

	session := createSession(t, svc.DB, now.Add(-10*time.Minute), now.Add(2*time.Hour))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		token, err := svc.Issue(session.SessionID)
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if seen[token.QRTokenCode] {
			t.Fatalf("kode duplikat pada iterasi %d", i)
		}
		seen[token.QRTokenCode] = true
	}
}
