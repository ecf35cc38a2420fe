package details

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/configs"
	approvalRoute "presensiku_backend/internals/features/attendance/approvals/route"
	approvalService "presensiku_backend/internals/features/attendance/approvals/service"
	biometricRoute "presensiku_backend/internals/features/attendance/biometrics/route"
	biometricService "presensiku_backend/internals/features/attendance/biometrics/service"
	qrRoute "presensiku_backend/internals/features/attendance/qr_tokens/route"
	qrService "presensiku_backend/internals/features/attendance/qr_tokens/service"
	sessionRoute "presensiku_backend/internals/features/attendance/sessions/route"
	verifRoute "presensiku_backend/internals/features/attendance/verification/route"
	verifService "presensiku_backend/internals/features/attendance/verification/service"
	auditService "presensiku_backend/internals/features/audits/service"
)

// AttendanceRoutes merakit seluruh service core sekali, lalu mendaftarkan
// route per area. `user` = login biasa, `manager` = session manager ke atas,
// `admin` = admin/owner.
func AttendanceRoutes(user, manager, admin fiber.Router, db *gorm.DB) {
	recorder := auditService.NewRecorder()
	tokens := qrService.NewQRTokenService(db)

	keyID := 1
	if v := configs.GetEnv("BIOMETRIC_KEY_VERSION"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			keyID = parsed
		}
	}
	crypto, err := biometricService.NewDescriptorCrypto(configs.BiometricMasterKey, keyID)
	if err != nil {
		log.Fatalf("❌ Descriptor crypto tidak bisa diinisialisasi: %v", err)
	}
	matcher := biometricService.NewMatcherService(db, crypto)

	engine := verifService.NewAttendanceEngine(db, tokens, matcher, recorder)
	approvals := approvalService.NewApprovalService(db, recorder)

	// User biasa
	verifRoute.VerificationUserRoutes(user, db, engine)
	biometricRoute.BiometricUserRoutes(user, db, matcher, recorder)
	sessionRoute.SessionUserRoutes(user, db)

	// Session manager ke atas
	sessionRoute.SessionAdminRoutes(manager, db)
	qrRoute.QRTokenAdminRoutes(manager, db, tokens, recorder)

	// Admin only: approval workflow (approve/reject/override/delete)
	approvalRoute.ApprovalAdminRoutes(admin, db, approvals)
}
