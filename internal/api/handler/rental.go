package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

type RentalHandler struct {
	rentalService RentalServiceInterface
}

func NewRentalHandler(rentalService RentalServiceInterface) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

type RentalTimeSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=-1,max=6" example:"-1"`
	StartHour int    `json:"start_hour" validate:"min=0,max=29" example:"10"`
	EndHour   int    `json:"end_hour" validate:"min=0,max=29" example:"22"`
	Type      string `json:"type" validate:"required,oneof=regular overnight maintenance special" example:"regular"`
	Name      string `json:"name,omitempty" example:"通常営業"`
	IsActive  bool   `json:"is_active" example:"true"`
}

type PricingRuleRequest struct {
	Name           string `json:"name" validate:"required" example:"平日昼間"`
	Type           string `json:"type" validate:"required,oneof=hourly flat session dynamic" example:"hourly"`
	BasePrice      int    `json:"base_price" validate:"min=0" example:"1000"`
	DaysOfWeek     []int  `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	StartHour      *int   `json:"start_hour,omitempty" validate:"omitempty,min=0,max=29"`
	EndHour        *int   `json:"end_hour,omitempty" validate:"omitempty,min=0,max=29"`
	PlayMode       string `json:"play_mode,omitempty" example:"standard"`
	PerPlayerPrice int    `json:"per_player_price" validate:"min=0" example:"500"`
	MinPrice       *int   `json:"min_price,omitempty"`
	MaxPrice       *int   `json:"max_price,omitempty"`
	SessionMinutes *int   `json:"session_minutes,omitempty" validate:"omitempty,gt=0"`
	Priority       int    `json:"priority" example:"0"`
}

type AvailabilityRequest struct {
	TotalUnits             int `json:"total_units" validate:"required,gt=0" example:"4"`
	MinUnitsAvailable      int `json:"min_units_available" validate:"min=0" example:"0"`
	MaxUnitsPerReservation int `json:"max_units_per_reservation" validate:"required,gt=0" example:"2"`
	BufferUnits            int `json:"buffer_units" validate:"min=0" example:"1"`
}

type CreateRentalSettingsRequest struct {
	DeviceTypeID string                  `json:"device_type_id" validate:"required" example:"beatmania-iidx"`
	TimeSlots    []RentalTimeSlotRequest `json:"time_slots" validate:"required,min=1,dive"`
	PricingRules []PricingRuleRequest    `json:"pricing_rules" validate:"required,min=1,dive"`
	Availability AvailabilityRequest     `json:"availability" validate:"required"`
}

type CheckAvailabilityRequest struct {
	DeviceTypeID string `json:"device_type_id" validate:"required"`
	Date         string `json:"date" validate:"required" example:"2025-08-01"`
	StartHour    int    `json:"start_hour" validate:"min=0,max=29"`
	EndHour      int    `json:"end_hour" validate:"min=0,max=29"`
	Units        int    `json:"units" validate:"required,gt=0"`
}

type QuotePriceRequest struct {
	DeviceTypeID string `json:"device_type_id" validate:"required"`
	Date         string `json:"date" validate:"required" example:"2025-08-01"`
	StartHour    int    `json:"start_hour" validate:"min=0,max=29"`
	EndHour      int    `json:"end_hour" validate:"min=0,max=29"`
	PlayMode     string `json:"play_mode,omitempty"`
	PlayerCount  int    `json:"player_count" validate:"required,gt=0"`
}

type RentalSettingsResponse struct {
	ID           string          `json:"id"`
	DeviceTypeID string          `json:"device_type_id"`
	TimeSlots    []rental.TimeSlot `json:"time_slots"`
	PricingRules []*pricing.Rule `json:"pricing_rules"`
	Availability rental.Availability `json:"availability"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func toRentalSettingsResponse(s *rental.Settings) *RentalSettingsResponse {
	return &RentalSettingsResponse{
		ID:           s.ID,
		DeviceTypeID: s.DeviceTypeID,
		TimeSlots:    s.TimeSlots,
		PricingRules: s.PricingRules,
		Availability: s.Availability,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}

func toRentalTimeSlot(req RentalTimeSlotRequest) (rental.TimeSlot, error) {
	window, err := timeslot.NewTimeWindow(req.StartHour, req.EndHour)
	if err != nil {
		return rental.TimeSlot{}, err
	}
	return rental.NewTimeSlot(req.DayOfWeek, window, rental.SlotType(req.Type), req.Name, req.IsActive)
}

func toPricingRule(req PricingRuleRequest) (*pricing.Rule, error) {
	return pricing.NewRule(pricing.RuleProps{
		Name:           req.Name,
		Type:           pricing.RuleType(req.Type),
		BasePrice:      req.BasePrice,
		DaysOfWeek:     req.DaysOfWeek,
		StartHour:      req.StartHour,
		EndHour:        req.EndHour,
		PlayMode:       req.PlayMode,
		PerPlayerPrice: req.PerPlayerPrice,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		SessionMinutes: req.SessionMinutes,
		Priority:       req.Priority,
	})
}

// Create godoc
// @Summary 貸出設定を作成
// @Tags rental
// @Accept json
// @Produce json
// @Param request body CreateRentalSettingsRequest true "貸出設定"
// @Success 201 {object} RentalSettingsResponse
// @Failure 400 {object} map[string]string
// @Router /rental/settings [post]
func (h *RentalHandler) Create(c echo.Context) error {
	var req CreateRentalSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	slots := make([]rental.TimeSlot, len(req.TimeSlots))
	for i, sr := range req.TimeSlots {
		slot, err := toRentalTimeSlot(sr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		slots[i] = slot
	}
	rules := make([]*pricing.Rule, len(req.PricingRules))
	for i, rr := range req.PricingRules {
		rule, err := toPricingRule(rr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		rules[i] = rule
	}
	availability, err := rental.NewAvailability(
		req.Availability.TotalUnits,
		req.Availability.MinUnitsAvailable,
		req.Availability.MaxUnitsPerReservation,
		req.Availability.BufferUnits,
	)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	settings, err := h.rentalService.CreateSettings(c.Request().Context(), application.CreateSettingsInput{
		DeviceTypeID: req.DeviceTypeID,
		TimeSlots:    slots,
		PricingRules: rules,
		Availability: availability,
	})
	if err != nil {
		if errors.Is(err, rental.ErrSettingsAlreadyExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toRentalSettingsResponse(settings))
}

// Get godoc
// @Summary 貸出設定を取得
// @Tags rental
// @Produce json
// @Param device_type_id path string true "機種ID"
// @Success 200 {object} RentalSettingsResponse
// @Failure 404 {object} map[string]string
// @Router /rental/settings/{device_type_id} [get]
func (h *RentalHandler) Get(c echo.Context) error {
	deviceTypeID := c.Param("device_type_id")
	settings, err := h.rentalService.GetSettings(c.Request().Context(), deviceTypeID)
	if err != nil {
		if errors.Is(err, rental.ErrSettingsNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "貸出設定が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// List godoc
// @Summary 貸出設定の一覧を取得
// @Tags rental
// @Produce json
// @Success 200 {array} RentalSettingsResponse
// @Router /rental/settings [get]
func (h *RentalHandler) List(c echo.Context) error {
	list, err := h.rentalService.ListSettings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	resp := make([]*RentalSettingsResponse, len(list))
	for i, s := range list {
		resp[i] = toRentalSettingsResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary 貸出設定を削除
// @Tags rental
// @Param device_type_id path string true "機種ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /rental/settings/{device_type_id} [delete]
func (h *RentalHandler) Delete(c echo.Context) error {
	if err := h.rentalService.DeleteSettings(c.Request().Context(), c.Param("device_type_id")); err != nil {
		if errors.Is(err, rental.ErrSettingsNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "貸出設定が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddTimeSlot godoc
// @Summary 貸出時間帯を追加
// @Tags rental
// @Accept json
// @Produce json
// @Param device_type_id path string true "機種ID"
// @Param request body RentalTimeSlotRequest true "貸出時間帯"
// @Success 200 {object} RentalSettingsResponse
// @Failure 400 {object} map[string]string
// @Router /rental/settings/{device_type_id}/time-slots [post]
func (h *RentalHandler) AddTimeSlot(c echo.Context) error {
	deviceTypeID := c.Param("device_type_id")
	var req RentalTimeSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	slot, err := toRentalTimeSlot(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	settings, err := h.rentalService.AddTimeSlot(c.Request().Context(), deviceTypeID, slot)
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// RemoveTimeSlot godoc
// @Summary 貸出時間帯を削除
// @Tags rental
// @Param device_type_id path string true "機種ID"
// @Param slot_id path string true "時間帯ID"
// @Success 200 {object} RentalSettingsResponse
// @Failure 404 {object} map[string]string
// @Router /rental/settings/{device_type_id}/time-slots/{slot_id} [delete]
func (h *RentalHandler) RemoveTimeSlot(c echo.Context) error {
	settings, err := h.rentalService.RemoveTimeSlot(c.Request().Context(), c.Param("device_type_id"), c.Param("slot_id"))
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// AddPricingRule godoc
// @Summary 料金ルールを追加
// @Tags rental
// @Accept json
// @Produce json
// @Param device_type_id path string true "機種ID"
// @Param request body PricingRuleRequest true "料金ルール"
// @Success 200 {object} RentalSettingsResponse
// @Failure 400 {object} map[string]string
// @Router /rental/settings/{device_type_id}/pricing-rules [post]
func (h *RentalHandler) AddPricingRule(c echo.Context) error {
	deviceTypeID := c.Param("device_type_id")
	var req PricingRuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	rule, err := toPricingRule(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	settings, err := h.rentalService.AddPricingRule(c.Request().Context(), deviceTypeID, rule)
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// RemovePricingRule godoc
// @Summary 料金ルールを削除
// @Tags rental
// @Param device_type_id path string true "機種ID"
// @Param rule_id path string true "ルールID"
// @Success 200 {object} RentalSettingsResponse
// @Failure 404 {object} map[string]string
// @Router /rental/settings/{device_type_id}/pricing-rules/{rule_id} [delete]
func (h *RentalHandler) RemovePricingRule(c echo.Context) error {
	settings, err := h.rentalService.RemovePricingRule(c.Request().Context(), c.Param("device_type_id"), c.Param("rule_id"))
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// UpdateAvailability godoc
// @Summary 台数設定を更新
// @Tags rental
// @Accept json
// @Produce json
// @Param device_type_id path string true "機種ID"
// @Param request body AvailabilityRequest true "台数設定"
// @Success 200 {object} RentalSettingsResponse
// @Failure 400 {object} map[string]string
// @Router /rental/settings/{device_type_id}/availability [put]
func (h *RentalHandler) UpdateAvailability(c echo.Context) error {
	deviceTypeID := c.Param("device_type_id")
	var req AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	availability, err := rental.NewAvailability(req.TotalUnits, req.MinUnitsAvailable, req.MaxUnitsPerReservation, req.BufferUnits)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	settings, err := h.rentalService.UpdateAvailability(c.Request().Context(), deviceTypeID, availability)
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive godoc
// @Summary 貸出設定の有効・無効を切り替え
// @Tags rental
// @Accept json
// @Produce json
// @Param device_type_id path string true "機種ID"
// @Param request body SetActiveRequest true "有効フラグ"
// @Success 200 {object} RentalSettingsResponse
// @Failure 404 {object} map[string]string
// @Router /rental/settings/{device_type_id}/active [put]
func (h *RentalHandler) SetActive(c echo.Context) error {
	deviceTypeID := c.Param("device_type_id")
	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}

	settings, err := h.rentalService.SetActive(c.Request().Context(), deviceTypeID, req.IsActive)
	if err != nil {
		return rentalErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toRentalSettingsResponse(settings))
}

// CheckAvailability godoc
// @Summary 空き確認
// @Description 指定日・時間帯に指定台数を貸し出せるかを確認します
// @Tags rental
// @Accept json
// @Produce json
// @Param request body CheckAvailabilityRequest true "空き確認条件"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /rental/availability/check [post]
func (h *RentalHandler) CheckAvailability(c echo.Context) error {
	var req CheckAvailabilityRequest
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

	available, err := h.rentalService.CheckAvailability(c.Request().Context(), application.AvailabilityQuery{
		DeviceTypeID: req.DeviceTypeID,
		Date:         date,
		StartHour:    req.StartHour,
		EndHour:      req.EndHour,
		Units:        req.Units,
	})
	if err != nil {
		switch {
		case errors.Is(err, rental.ErrSettingsNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, device.ErrNoDevicesRegistered):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}

// QuotePrice godoc
// @Summary 料金見積り
// @Description 指定時間帯の貸出料金を見積もります
// @Tags rental
// @Accept json
// @Produce json
// @Param request body QuotePriceRequest true "見積り条件"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Router /rental/price/quote [post]
func (h *RentalHandler) QuotePrice(c echo.Context) error {
	var req QuotePriceRequest
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

	price, err := h.rentalService.QuotePrice(c.Request().Context(), application.PriceQuery{
		DeviceTypeID: req.DeviceTypeID,
		Date:         date,
		StartHour:    req.StartHour,
		EndHour:      req.EndHour,
		PlayMode:     req.PlayMode,
		PlayerCount:  req.PlayerCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, rental.ErrSettingsNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, rental.ErrNoAvailableSlot), errors.Is(err, rental.ErrNoPricingMatch):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]int{"price": price})
}

func rentalErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, rental.ErrSettingsNotFound), errors.Is(err, rental.ErrTimeSlotNotFound), errors.Is(err, pricing.ErrRuleNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, rental.ErrLastTimeSlot), errors.Is(err, rental.ErrLastPricingRule):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}
