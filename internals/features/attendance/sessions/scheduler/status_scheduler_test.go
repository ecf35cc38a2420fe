package scheduler

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

func seedSession(t *testing.T, db *gorm.DB, status model.SessionStatus, start, end time.Time) *model.SessionModel {
	t.Helper()
	s := model.SessionModel{
		SessionOrganizationID: uuid.New(),
		SessionTitle:          "Kajian Subuh",
		SessionStartTime:      start,
		SessionEndTime:        end,
		SessionLatitude:       -6.2,
		SessionLongitude:      106.8,
		SessionRadiusMeters:   100,
		SessionStatus:         status,
		SessionCreatedBy:      uuid.New(),
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &s
}

func TestTickSessionStatuses(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	starting := seedSession(t, db, model.SessionScheduled, now.Add(-5*time.Minute), now.Add(time.Hour))
	ending := seedSession(t, db, model.SessionActive, now.Add(-2*time.Hour), now.Add(-5*time.Minute))
	upcoming := seedSession(t, db, model.SessionScheduled, now.Add(time.Hour), now.Add(2*time.Hour))
	draft := seedSession(t, db, model.SessionDraft, now.Add(-5*time.Minute), now.Add(time.Hour))
	cancelled := seedSession(t, db, model.SessionCancelled, now.Add(-5*time.Minute), now.Add(time.Hour))

	tickSessionStatuses(db, now)

	want := map[uuid.UUID]model.SessionStatus{
		starting.SessionID:  model.SessionActive,
		ending.SessionID:    model.SessionCompleted,
		upcoming.SessionID:  model.SessionScheduled,
		draft.SessionID:     model.SessionDraft,
		cancelled.SessionID: model.SessionCancelled,
	}
	for id, wantStatus := range want {
		var s model.SessionModel
		if err := db.First(&s, "session_id = ?", id).Error; err != nil {
			t.Fatalf("reload session: %v", err)
		}
		if s.SessionStatus != wantStatus {
			t.Errorf("session %s status = %s, want %s", id, s.SessionStatus, wantStatus)
		}
	}
}

// Sesi yang jam mulainya sudah lewat DAN jam selesainya juga lewat langsung
// loncat scheduled→completed dalam satu tick, tanpa mampir active.
func TestTickSessionStatusesSkipsStaleScheduled(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	stale := seedSession(t, db, model.SessionScheduled, now.Add(-2*time.Hour), now.Add(-time.Hour))
	tickSessionStatuses(db, now)

	var s model.SessionModel
	if err := db.First(&s, "session_id = ?", stale.SessionID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if s.SessionStatus != model.SessionCompleted {
		t.Fatalf("status = %s, want completed", s.SessionStatus)
	}
}
