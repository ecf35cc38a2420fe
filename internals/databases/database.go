package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	AttendanceModel "presensiku_backend/internals/features/attendance/verification/model"
	BiometricModel "presensiku_backend/internals/features/attendance/biometrics/model"
	QRTokenModel "presensiku_backend/internals/features/attendance/qr_tokens/model"
	SessionModel "presensiku_backend/internals/features/attendance/sessions/model"
	AuditModel "presensiku_backend/internals/features/audits/model"
	UserModel "presensiku_backend/internals/features/users/users/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// ✅ Gunakan URL/DSN lengkap + statement_timeout
	// Catatan: kalau pakai PgBouncer, ganti host/port ke port PgBouncer (mis. 6543) dan biarkan PreferSimpleProtocol=true
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=presensiku&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	// Logger gorm: hanya warn + slow query di atas 200ms
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	// jalankan ringan supaya koneksi/pool “keisi” & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

// AutoMigrate dijalankan hanya kalau DB_AUTOMIGRATE=true (untuk environment dev).
// Production pakai skema yang dikelola terpisah; unique index attendances
// (user_id, session_id) WAJIB ada karena jadi penentu akhir duplicate check.
func AutoMigrate() {
	if os.Getenv("DB_AUTOMIGRATE") != "true" {
		return
	}
	log.Println("🛠 AutoMigrate aktif...")
	if err := DB.AutoMigrate(
		&UserModel.UserModel{},
		&SessionModel.SessionModel{},
		&QRTokenModel.QRTokenModel{},
		&BiometricModel.FaceEnrollmentModel{},
		&AttendanceModel.AttendanceModel{},
		&AuditModel.AttendanceLogModel{},
		&AuditModel.AuditLogModel{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate gagal: %v", err)
	}
	log.Println("✅ AutoMigrate selesai.")
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
