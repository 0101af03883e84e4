package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

const dateFormat = "2006-01-02"

type ScheduleHandler struct {
	timeSlotService TimeSlotServiceInterface
}

func NewScheduleHandler(timeSlotService TimeSlotServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{timeSlotService: timeSlotService}
}

type RepeatRequest struct {
	Type       string `json:"type" validate:"required,oneof=daily weekly monthly" example:"weekly"`
	EndDate    string `json:"end_date" validate:"required" example:"2025-08-31"`
	DaysOfWeek []int  `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
}

type ScheduleTimeSlotsRequest struct {
	DeviceTypeID string         `json:"device_type_id" validate:"required" example:"beatmania-iidx"`
	Date         string         `json:"date" validate:"required" example:"2025-08-01"`
	TemplateIDs  []string       `json:"template_ids" validate:"required,min=1"`
	Repeat       *RepeatRequest `json:"repeat,omitempty"`
}

type ScheduleResponse struct {
	ID           string              `json:"id"`
	Date         string              `json:"date"`
	DeviceTypeID string              `json:"device_type_id"`
	Templates    []*TemplateResponse `json:"templates"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

func toScheduleResponse(s *timeslot.TimeSlotSchedule) *ScheduleResponse {
	templates := make([]*TemplateResponse, len(s.Templates))
	for i, t := range s.Templates {
		templates[i] = toTemplateResponse(t)
	}
	return &ScheduleResponse{
		ID:           s.ID,
		Date:         s.Date.Format(dateFormat),
		DeviceTypeID: s.DeviceTypeID,
		Templates:    templates,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}

// Schedule godoc
// @Summary 時間帯スケジュールを登録
// @Description テンプレートを日付（繰り返し展開可）に割り当てます
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body ScheduleTimeSlotsRequest true "スケジュール情報"
// @Success 201 {array} ScheduleResponse
// @Failure 400 {object} map[string]string
// @Router /time-slots/schedules [post]
func (h *ScheduleHandler) Schedule(c echo.Context) error {
	var req ScheduleTimeSlotsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := time.ParseInLocation(dateFormat, req.Date, time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "日付の形式が不正です"})
	}

	input := application.ScheduleTimeSlotsInput{
		DeviceTypeID: req.DeviceTypeID,
		Date:         date,
		TemplateIDs:  req.TemplateIDs,
	}
	if req.Repeat != nil {
		endDate, err := time.ParseInLocation(dateFormat, req.Repeat.EndDate, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "繰り返し終了日の形式が不正です"})
		}
		input.Repeat = &application.RepeatOption{
			Type:       application.RepeatType(req.Repeat.Type),
			EndDate:    endDate,
			DaysOfWeek: req.Repeat.DaysOfWeek,
		}
	}

	schedules, err := h.timeSlotService.ScheduleTimeSlots(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, timeslot.ErrTemplateNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, timeslot.ErrPastDate), errors.Is(err, timeslot.ErrInvalidRepeat), errors.Is(err, timeslot.ErrOverlappingTemplates):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	responses := make([]*ScheduleResponse, len(schedules))
	for i, s := range schedules {
		responses[i] = toScheduleResponse(s)
	}
	return c.JSON(http.StatusCreated, responses)
}

// GetByID godoc
// @Summary 時間帯スケジュールを取得
// @Tags schedules
// @Produce json
// @Param id path string true "スケジュールID"
// @Success 200 {object} ScheduleResponse
// @Failure 404 {object} map[string]string
// @Router /time-slots/schedules/{id} [get]
func (h *ScheduleHandler) GetByID(c echo.Context) error {
	schedule, err := h.timeSlotService.GetSchedule(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, timeslot.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "スケジュールが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

// List godoc
// @Summary 時間帯スケジュール一覧を取得
// @Description 日付範囲（と任意の機種ID）でスケジュールを検索します
// @Tags schedules
// @Produce json
// @Param from query string true "開始日（YYYY-MM-DD）"
// @Param to query string true "終了日（YYYY-MM-DD）"
// @Param device_type_id query string false "機種ID"
// @Success 200 {array} ScheduleResponse
// @Failure 400 {object} map[string]string
// @Router /time-slots/schedules [get]
func (h *ScheduleHandler) List(c echo.Context) error {
	fromStr := c.QueryParam("from")
	toStr := c.QueryParam("to")
	if fromStr == "" || toStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "fromとtoは必須です"})
	}

	from, err := time.ParseInLocation(dateFormat, fromStr, time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "開始日の形式が不正です"})
	}
	to, err := time.ParseInLocation(dateFormat, toStr, time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "終了日の形式が不正です"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "終了日は開始日以降を指定してください"})
	}

	schedules, err := h.timeSlotService.ListSchedules(c.Request().Context(), timeslot.ScheduleDateRangeFilter{
		From:         from,
		To:           to,
		DeviceTypeID: c.QueryParam("device_type_id"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*ScheduleResponse, len(schedules))
	for i, s := range schedules {
		responses[i] = toScheduleResponse(s)
	}
	return c.JSON(http.StatusOK, responses)
}

// Delete godoc
// @Summary 時間帯スケジュールを削除
// @Tags schedules
// @Param id path string true "スケジュールID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /time-slots/schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c echo.Context) error {
	if err := h.timeSlotService.DeleteSchedule(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, timeslot.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "スケジュールが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetAvailable godoc
// @Summary 利用可能な時間帯を取得
// @Description 指定日・機種の予約可能な時間帯を返します
// @Tags schedules
// @Produce json
// @Param date query string true "日付（YYYY-MM-DD）"
// @Param device_type_id query string true "機種ID"
// @Success 200 {array} TemplateResponse
// @Failure 400 {object} map[string]string
// @Router /time-slots/available [get]
func (h *ScheduleHandler) GetAvailable(c echo.Context) error {
	dateStr := c.QueryParam("date")
	deviceTypeID := c.QueryParam("device_type_id")
	if dateStr == "" || deviceTypeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dateとdevice_type_idは必須です"})
	}

	date, err := time.ParseInLocation(dateFormat, dateStr, time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "日付の形式が不正です"})
	}

	templates, err := h.timeSlotService.GetAvailableTimeSlots(c.Request().Context(), date, deviceTypeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		responses[i] = toTemplateResponse(t)
	}
	return c.JSON(http.StatusOK, responses)
}
