package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/sessions/dto"
	"presensiku_backend/internals/features/attendance/sessions/model"
	"presensiku_backend/internals/features/attendance/sessions/service"
	attendanceDto "presensiku_backend/internals/features/attendance/verification/dto"
	attendanceModel "presensiku_backend/internals/features/attendance/verification/model"
	helper "presensiku_backend/internals/helpers"
)

type SessionController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{DB: db, validate: validator.New()}
}

// POST /sessions (session manager ke atas)
func (ctrl *SessionController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var payload dto.CreateSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.validate.Struct(&payload); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !payload.EndTime.After(payload.StartTime) {
		return helper.JsonError(c, fiber.StatusBadRequest, "end_time harus setelah start_time")
	}

	session := payload.ToModel(userID)
	if err := ctrl.DB.Create(session).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat sesi")
	}

	return helper.JsonCreated(c, "Sesi berhasil dibuat", dto.FromSessionModel(session))
}

// GET /sessions/:id
func (ctrl *SessionController) GetByID(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}

	session, err := service.FindSession(ctrl.DB, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Sesi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sesi")
	}

	return helper.JsonOK(c, "Detail sesi", dto.FromSessionModel(session))
}

// GET /sessions?organization_id=&status=
func (ctrl *SessionController) List(c *fiber.Ctx) error {
	q := ctrl.DB.Model(&model.SessionModel{})

	if v := c.Query("organization_id"); v != "" {
		orgID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "organization_id tidak valid")
		}
		q = q.Where("session_organization_id = ?", orgID)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("session_status = ?", v)
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sesi")
	}

	var rows []model.SessionModel
	if err := q.Order("session_start_time DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil daftar sesi")
	}

	out := make([]dto.SessionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromSessionModel(&rows[i]))
	}

	return helper.JsonList(c, "Daftar sesi",
		out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /sessions/:id/attendances?status= (read path, filter-only)
func (ctrl *SessionController) ListAttendances(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}

	q := ctrl.DB.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_session_id = ?", sessionID)
	if v := c.Query("status"); v != "" {
		q = q.Where("attendance_status = ?", v)
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung kehadiran sesi")
	}

	var rows []attendanceModel.AttendanceModel
	if err := q.Order("attendance_verified_at ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kehadiran sesi")
	}

	out := make([]attendanceDto.AttendanceDetailResponse, 0, len(rows))
	for i := range rows {
		out = append(out, attendanceDto.FromAttendanceModelDetail(&rows[i]))
	}

	return helper.JsonList(c, "Kehadiran sesi",
		out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}
