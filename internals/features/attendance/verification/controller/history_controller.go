package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/attendance/verification/dto"
	"presensiku_backend/internals/features/attendance/verification/model"
	helper "presensiku_backend/internals/helpers"
)

type HistoryController struct {
	DB *gorm.DB
}

func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{DB: db}
}

// GET /attendance/history?user_id=&session_id=&start_date=&end_date=
// Read path filter-only. Non-admin hanya boleh lihat miliknya sendiri.
func (ctrl *HistoryController) List(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	q := ctrl.DB.Model(&model.AttendanceModel{})

	if helper.IsAdminActor(c) {
		if v := c.Query("user_id"); v != "" {
			userID, err := uuid.Parse(v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "user_id tidak valid")
			}
			q = q.Where("attendance_user_id = ?", userID)
		}
	} else {
		q = q.Where("attendance_user_id = ?", actorID)
	}

	if v := c.Query("session_id"); v != "" {
		sessionID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
		}
		q = q.Where("attendance_session_id = ?", sessionID)
	}

	if v := c.Query("start_date"); v != "" {
		start, err := time.Parse("2006-01-02", v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "start_date harus format YYYY-MM-DD")
		}
		q = q.Where("attendance_verified_at >= ?", start)
	}
	if v := c.Query("end_date"); v != "" {
		end, err := time.Parse("2006-01-02", v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "end_date harus format YYYY-MM-DD")
		}
		q = q.Where("attendance_verified_at < ?", end.AddDate(0, 0, 1))
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung riwayat kehadiran")
	}

	var rows []model.AttendanceModel
	if err := q.Order("attendance_verified_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil riwayat kehadiran")
	}

	out := make([]dto.AttendanceDetailResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromAttendanceModelDetail(&rows[i]))
	}

	return helper.JsonList(c, "Riwayat kehadiran",
		out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}
