package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/reservation"
)

type ReservationHandler struct {
	reservationService ReservationServiceInterface
}

func NewReservationHandler(reservationService ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

type CreateReservationRequest struct {
	UserID         string `json:"user_id" validate:"required" example:"user-123"`
	DeviceTypeID   string `json:"device_type_id" validate:"required" example:"beatmania-iidx"`
	Date           string `json:"date" validate:"required" example:"2025-08-01"`
	StartHour      int    `json:"start_hour" validate:"min=0,max=29" example:"22"`
	EndHour        int    `json:"end_hour" validate:"min=0,max=29" example:"26"`
	Units          int    `json:"units" validate:"required,gt=0" example:"1"`
	PlayerCount    int    `json:"player_count" validate:"required,gt=0" example:"2"`
	PlayMode       string `json:"play_mode,omitempty" example:"standard"`
	IdempotencyKey string `json:"idempotency_key" validate:"required" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

type RejectReservationRequest struct {
	Note string `json:"note,omitempty" example:"当日メンテナンスのため"`
}

type ReservationResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	DeviceTypeID   string `json:"device_type_id"`
	Date           string `json:"date"`
	StartHour      int    `json:"start_hour"`
	EndHour        int    `json:"end_hour"`
	Units          int    `json:"units"`
	PlayerCount    int    `json:"player_count"`
	PlayMode       string `json:"play_mode,omitempty"`
	TotalPrice     int    `json:"total_price"`
	Status         string `json:"status"`
	StaffNote      string `json:"staff_note,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		DeviceTypeID:   r.DeviceTypeID,
		Date:           r.Date.Format(dateFormat),
		StartHour:      r.StartHour,
		EndHour:        r.EndHour,
		Units:          r.Units,
		PlayerCount:    r.PlayerCount,
		PlayMode:       r.PlayMode,
		TotalPrice:     r.TotalPrice,
		Status:         string(r.Status),
		StaffNote:      r.StaffNote,
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 貸出予約を作成
// @Description 空き確認と料金見積りを行い、承認待ちの予約を作成します
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
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

	res, err := h.reservationService.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		UserID:         req.UserID,
		DeviceTypeID:   req.DeviceTypeID,
		Date:           date,
		StartHour:      req.StartHour,
		EndHour:        req.EndHour,
		Units:          req.Units,
		PlayerCount:    req.PlayerCount,
		PlayMode:       req.PlayMode,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrUnitsNotAvailable), errors.Is(err, reservation.ErrIdempotencyKeyConflict):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, rental.ErrSettingsNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, device.ErrNoDevicesRegistered):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, rental.ErrNoAvailableSlot), errors.Is(err, rental.ErrNoPricingMatch):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusCreated, toReservationResponse(res))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	res, err := h.reservationService.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "予約が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// ListByUser godoc
// @Summary ユーザーの予約一覧を取得
// @Tags reservations
// @Produce json
// @Param user_id path string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Router /users/{user_id}/reservations [get]
func (h *ReservationHandler) ListByUser(c echo.Context) error {
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	reservations, err := h.reservationService.GetUserReservations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*ReservationResponse, len(reservations))
	for i, r := range reservations {
		responses[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, responses)
}

// ListBySlot godoc
// @Summary 時間帯の予約一覧を取得
// @Description 指定機種・日付・時間帯に重なる有効な予約を一覧します
// @Tags reservations
// @Produce json
// @Param device_type_id query string true "機種ID"
// @Param date query string true "対象日" example:"2025-08-01"
// @Param start_hour query int true "開始時刻"
// @Param end_hour query int true "終了時刻"
// @Success 200 {array} ReservationResponse
// @Failure 400 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) ListBySlot(c echo.Context) error {
	deviceTypeID := c.QueryParam("device_type_id")
	if deviceTypeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_type_idは必須です"})
	}
	date, err := time.ParseInLocation(dateFormat, c.QueryParam("date"), time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "日付の形式が不正です"})
	}
	startHour, err := strconv.Atoi(c.QueryParam("start_hour"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_hourの形式が不正です"})
	}
	endHour, err := strconv.Atoi(c.QueryParam("end_hour"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "end_hourの形式が不正です"})
	}

	reservations, err := h.reservationService.GetSlotReservations(c.Request().Context(), date, deviceTypeID, startHour, endHour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*ReservationResponse, len(reservations))
	for i, r := range reservations {
		responses[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, responses)
}

// Approve godoc
// @Summary 予約を承認
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c echo.Context) error {
	res, err := h.reservationService.ApproveReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return reservationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// Reject godoc
// @Summary 予約を却下
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body RejectReservationRequest false "却下理由"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/reject [post]
func (h *ReservationHandler) Reject(c echo.Context) error {
	var req RejectReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	res, err := h.reservationService.RejectReservation(c.Request().Context(), c.Param("id"), req.Note)
	if err != nil {
		return reservationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, err := h.reservationService.CancelReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return reservationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// Complete godoc
// @Summary 予約を完了
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c echo.Context) error {
	res, err := h.reservationService.CompleteReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return reservationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

func reservationErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservation.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "予約が見つかりません"})
	case errors.Is(err, reservation.ErrReservationNotPending),
		errors.Is(err, reservation.ErrNotApproved),
		errors.Is(err, reservation.ErrAlreadyCancelled),
		errors.Is(err, reservation.ErrAlreadyFinalized):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
