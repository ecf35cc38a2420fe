package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presensiku_backend/internals/features/attendance/sessions/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.SessionModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func makeSession(t *testing.T, db *gorm.DB, capacity *int) *model.SessionModel {
	t.Helper()
	now := time.Now()
	s := model.SessionModel{
		SessionOrganizationID: uuid.New(),
		SessionTitle:          "Kajian Rutin",
		SessionStartTime:      now.Add(-10 * time.Minute),
		SessionEndTime:        now.Add(time.Hour),
		SessionLatitude:       -6.2,
		SessionLongitude:      106.8,
		SessionRadiusMeters:   100,
		SessionCapacity:       capacity,
		SessionStatus:         model.SessionActive,
		SessionCreatedBy:      uuid.New(),
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &s
}

func TestIncrementSessionCountCapacityGuard(t *testing.T) {
	db := openTestDB(t)
	cap2 := 2
	session := makeSession(t, db, &cap2)

	for i := 0; i < 2; i++ {
		if err := IncrementSessionCount(db, session.SessionID); err != nil {
			t.Fatalf("increment %d: %v", i+1, err)
		}
	}
	if err := IncrementSessionCount(db, session.SessionID); err != ErrSessionFull {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}

	var got model.SessionModel
	if err := db.First(&got, "session_id = ?", session.SessionID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.SessionCurrentCount != 2 {
		t.Fatalf("count = %d, want 2", got.SessionCurrentCount)
	}
}

func TestIncrementSessionCountUnlimited(t *testing.T) {
	db := openTestDB(t)
	session := makeSession(t, db, nil)

	for i := 0; i < 5; i++ {
		if err := IncrementSessionCount(db, session.SessionID); err != nil {
			t.Fatalf("increment %d: %v", i+1, err)
		}
	}

	var got model.SessionModel
	db.First(&got, "session_id = ?", session.SessionID)
	if got.SessionCurrentCount != 5 {
		t.Fatalf("count = %d, want 5", got.SessionCurrentCount)
	}
}

func TestDecrementSessionCountNeverNegative(t *testing.T) {
	db := openTestDB(t)
	session := makeSession(t, db, nil)

	if err := DecrementSessionCount(db, session.SessionID); err != nil {
		t.Fatalf("decrement at zero: %v", err)
	}

	var got model.SessionModel
	db.First(&got, "session_id = ?", session.SessionID)
	if got.SessionCurrentCount != 0 {
		t.Fatalf("count = %d, want 0", got.SessionCurrentCount)
	}
}

func TestFindSessionNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := FindSession(db, uuid.New()); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestComputeScheduleStatus(t *testing.T) {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name    string
		current model.SessionStatus
		now     time.Time
		want    model.SessionStatus
	}{
		{"draft never moves", model.SessionDraft, start.Add(time.Hour), model.SessionDraft},
		{"cancelled never moves", model.SessionCancelled, start.Add(time.Hour), model.SessionCancelled},
		{"before start", model.SessionScheduled, start.Add(-time.Minute), model.SessionScheduled},
		{"inside window", model.SessionScheduled, start.Add(time.Minute), model.SessionActive},
		{"after end", model.SessionActive, end.Add(time.Minute), model.SessionCompleted},
		{"exactly end", model.SessionActive, end, model.SessionCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &model.SessionModel{
				SessionStartTime: start,
				SessionEndTime:   end,
				SessionStatus:    tt.current,
			}
			if got := ComputeScheduleStatus(s, tt.now); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}
