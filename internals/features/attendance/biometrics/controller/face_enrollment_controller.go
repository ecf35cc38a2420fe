package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/biometrics/dto"
	"presensiku_backend/internals/features/attendance/biometrics/service"
	auditModel "presensiku_backend/internals/features/audits/model"
	auditService "presensiku_backend/internals/features/audits/service"
	userService "presensiku_backend/internals/features/users/users/service"
	helper "presensiku_backend/internals/helpers"
)

type FaceEnrollmentController struct {
	DB       *gorm.DB
	Matcher  *service.MatcherService
	Recorder *auditService.Recorder
	validate *validator.Validate
}

func NewFaceEnrollmentController(db *gorm.DB, matcher *service.MatcherService, recorder *auditService.Recorder) *FaceEnrollmentController {
	return &FaceEnrollmentController{
		DB:       db,
		Matcher:  matcher,
		Recorder: recorder,
		validate: validator.New(),
	}
}

// POST /face/enroll
func (ctrl *FaceEnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var payload dto.EnrollFaceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	// Consent biometrik diambil dari record user, bukan dari payload
	user, err := userService.FindUser(ctrl.DB, userID)
	if err != nil {
		if errors.Is(err, userService.ErrUserNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data user")
	}

	enrollment, err := ctrl.Matcher.Enroll(userID, payload.FaceDescriptor, user.UserFaceConsent, payload.ImageURL)
	if err != nil {
		return ctrl.mapEnrollError(c, err)
	}

	ip, ua := helper.ClientMeta(c)
	meta := auditService.ClientMeta{IPAddress: ip, UserAgent: ua}
	if err := ctrl.Recorder.WriteAudit(ctrl.DB, &userID, auditModel.AuditFaceEnrolled,
		"face_enrollment", &enrollment.FaceEnrollmentID, nil,
		map[string]any{"key_id": enrollment.FaceEnrollmentEncryptionKeyID}, nil, meta); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mencatat audit enrollment")
	}

	return helper.JsonCreated(c, "Wajah berhasil didaftarkan", dto.FromFaceEnrollmentModel(enrollment))
}

// POST /face/re-enroll
func (ctrl *FaceEnrollmentController) ReEnroll(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var payload dto.EnrollFaceRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}

	enrollment, err := ctrl.Matcher.ReEnroll(userID, payload.FaceDescriptor, payload.ImageURL)
	if err != nil {
		return ctrl.mapEnrollError(c, err)
	}

	ip, ua := helper.ClientMeta(c)
	meta := auditService.ClientMeta{IPAddress: ip, UserAgent: ua}
	if err := ctrl.Recorder.WriteAudit(ctrl.DB, &userID, auditModel.AuditFaceReEnrolled,
		"face_enrollment", &enrollment.FaceEnrollmentID, nil,
		map[string]any{"key_id": enrollment.FaceEnrollmentEncryptionKeyID}, nil, meta); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mencatat audit enrollment")
	}

	return helper.JsonCreated(c, "Wajah berhasil didaftarkan ulang", dto.FromFaceEnrollmentModel(enrollment))
}

func (ctrl *FaceEnrollmentController) mapEnrollError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidDescriptor):
		return helper.JsonError(c, fiber.StatusBadRequest, "Descriptor wajah tidak valid")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return helper.JsonError(c, fiber.StatusConflict, "Wajah sudah terdaftar, gunakan re-enroll")
	case errors.Is(err, service.ErrNoEnrollment):
		return helper.JsonError(c, fiber.StatusNotFound, "Belum ada wajah terdaftar, gunakan enroll")
	case errors.Is(err, service.ErrConsentRequired):
		return helper.JsonError(c, fiber.StatusForbidden, "Consent penyimpanan data biometrik belum diberikan")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mendaftarkan wajah")
	}
}
