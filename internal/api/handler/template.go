package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

type TemplateHandler struct {
	timeSlotService TimeSlotServiceInterface
}

func NewTemplateHandler(timeSlotService TimeSlotServiceInterface) *TemplateHandler {
	return &TemplateHandler{timeSlotService: timeSlotService}
}

type CreditOptionRequest struct {
	Type         string      `json:"type" validate:"required,oneof=fixed freeplay unlimited" example:"freeplay"`
	Hours        []int       `json:"hours" validate:"required,min=1" example:"4"`
	Prices       map[int]int `json:"prices" validate:"required"`
	FixedCredits *int        `json:"fixed_credits,omitempty" example:"100"`
}

type CreateTemplateRequest struct {
	Name          string                `json:"name" validate:"required" example:"朝イチ4時間パック"`
	Description   string                `json:"description" example:"開店直後の割安枠"`
	Type          string                `json:"type" validate:"required,oneof=early overnight" example:"early"`
	StartHour     int                   `json:"start_hour" validate:"min=0,max=29" example:"10"`
	EndHour       int                   `json:"end_hour" validate:"min=0,max=29" example:"14"`
	CreditOptions []CreditOptionRequest `json:"credit_options" validate:"required,min=1,dive"`
	Enable2P      bool                  `json:"enable_2p" example:"true"`
	Price2PExtra  int                   `json:"price_2p_extra" example:"10000"`
	IsYouthTime   bool                  `json:"is_youth_time" example:"false"`
	Priority      int                   `json:"priority" example:"0"`
	IsActive      bool                  `json:"is_active" example:"true"`
}

type UpdateTemplateRequest struct {
	Name          *string               `json:"name,omitempty"`
	Description   *string               `json:"description,omitempty"`
	StartHour     *int                  `json:"start_hour,omitempty" validate:"omitempty,min=0,max=29"`
	EndHour       *int                  `json:"end_hour,omitempty" validate:"omitempty,min=0,max=29"`
	CreditOptions []CreditOptionRequest `json:"credit_options,omitempty" validate:"omitempty,dive"`
	Enable2P      *bool                 `json:"enable_2p,omitempty"`
	Price2PExtra  *int                  `json:"price_2p_extra,omitempty"`
	IsYouthTime   *bool                 `json:"is_youth_time,omitempty"`
	Priority      *int                  `json:"priority,omitempty"`
	IsActive      *bool                 `json:"is_active,omitempty"`
}

type TemplateResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Type          string                 `json:"type"`
	StartHour     int                    `json:"start_hour"`
	EndHour       int                    `json:"end_hour"`
	CreditOptions []timeslot.CreditOption `json:"credit_options"`
	Enable2P      bool                   `json:"enable_2p"`
	Price2PExtra  int                    `json:"price_2p_extra"`
	IsYouthTime   bool                   `json:"is_youth_time"`
	Priority      int                    `json:"priority"`
	IsActive      bool                   `json:"is_active"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

func toTemplateResponse(t *timeslot.TimeSlotTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		Type:          string(t.Type),
		StartHour:     t.Window.StartHour(),
		EndHour:       t.Window.EndHour(),
		CreditOptions: t.CreditOptions,
		Enable2P:      t.Enable2P,
		Price2PExtra:  t.Price2PExtra,
		IsYouthTime:   t.IsYouthTime,
		Priority:      t.Priority,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
}

func toCreditOptions(reqs []CreditOptionRequest) []timeslot.CreditOption {
	options := make([]timeslot.CreditOption, len(reqs))
	for i, r := range reqs {
		options[i] = timeslot.CreditOption{
			Type:         timeslot.CreditType(r.Type),
			Hours:        r.Hours,
			Prices:       r.Prices,
			FixedCredits: r.FixedCredits,
		}
	}
	return options
}

// Create godoc
// @Summary 時間帯テンプレートを作成
// @Description 新しい時間帯テンプレートを作成します
// @Tags templates
// @Accept json
// @Produce json
// @Param request body CreateTemplateRequest true "テンプレート情報"
// @Success 201 {object} TemplateResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /time-slots/templates [post]
func (h *TemplateHandler) Create(c echo.Context) error {
	var req CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := application.CreateTemplateInput{
		Name:          req.Name,
		Description:   req.Description,
		Type:          timeslot.TemplateType(req.Type),
		StartHour:     req.StartHour,
		EndHour:       req.EndHour,
		CreditOptions: toCreditOptions(req.CreditOptions),
		Enable2P:      req.Enable2P,
		Price2PExtra:  req.Price2PExtra,
		IsYouthTime:   req.IsYouthTime,
		Priority:      req.Priority,
		IsActive:      req.IsActive,
	}

	t, err := h.timeSlotService.CreateTemplate(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, timeslot.ErrDuplicateName), errors.Is(err, timeslot.ErrConflictingTemplates):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, toTemplateResponse(t))
}

// GetByID godoc
// @Summary 時間帯テンプレートを取得
// @Tags templates
// @Produce json
// @Param id path string true "テンプレートID"
// @Success 200 {object} TemplateResponse
// @Failure 404 {object} map[string]string
// @Router /time-slots/templates/{id} [get]
func (h *TemplateHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	t, err := h.timeSlotService.GetTemplate(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, timeslot.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "テンプレートが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTemplateResponse(t))
}

// List godoc
// @Summary 時間帯テンプレート一覧を取得
// @Tags templates
// @Produce json
// @Param type query string false "種別（early/overnight）"
// @Param is_active query bool false "有効なもののみ"
// @Param sort query string false "priority指定で優先度降順"
// @Success 200 {array} TemplateResponse
// @Router /time-slots/templates [get]
func (h *TemplateHandler) List(c echo.Context) error {
	filter := timeslot.TemplateFilter{}
	if v := c.QueryParam("type"); v != "" {
		t := timeslot.TemplateType(v)
		filter.Type = &t
	}

	if c.QueryParam("sort") == "priority" {
		templates, err := h.timeSlotService.ListTemplatesByPriority(c.Request().Context(), filter.Type)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		responses := make([]*TemplateResponse, len(templates))
		for i, t := range templates {
			responses[i] = toTemplateResponse(t)
		}
		return c.JSON(http.StatusOK, responses)
	}

	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	if v := c.QueryParam("is_youth_time"); v != "" {
		youth := v == "true"
		filter.IsYouthTime = &youth
	}

	templates, err := h.timeSlotService.ListTemplates(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		responses[i] = toTemplateResponse(t)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary 時間帯テンプレートを更新
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "テンプレートID"
// @Param request body UpdateTemplateRequest true "更新内容"
// @Success 200 {object} TemplateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /time-slots/templates/{id} [put]
func (h *TemplateHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req UpdateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := application.UpdateTemplateInput{
		Name:         req.Name,
		Description:  req.Description,
		StartHour:    req.StartHour,
		EndHour:      req.EndHour,
		Enable2P:     req.Enable2P,
		Price2PExtra: req.Price2PExtra,
		IsYouthTime:  req.IsYouthTime,
		Priority:     req.Priority,
		IsActive:     req.IsActive,
	}
	if req.CreditOptions != nil {
		input.CreditOptions = toCreditOptions(req.CreditOptions)
	}

	t, err := h.timeSlotService.UpdateTemplate(c.Request().Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, timeslot.ErrTemplateNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "テンプレートが見つかりません"})
		case errors.Is(err, timeslot.ErrDuplicateName), errors.Is(err, timeslot.ErrConflictingTemplates):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, toTemplateResponse(t))
}

// Delete godoc
// @Summary 時間帯テンプレートを削除
// @Tags templates
// @Param id path string true "テンプレートID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /time-slots/templates/{id} [delete]
func (h *TemplateHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.timeSlotService.DeleteTemplate(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, timeslot.ErrTemplateNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "テンプレートが見つかりません"})
		case errors.Is(err, timeslot.ErrTemplateInUse):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
