package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
)

type DeviceHandler struct {
	deviceService DeviceServiceInterface
}

func NewDeviceHandler(deviceService DeviceServiceInterface) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

type RegisterDeviceRequest struct {
	DeviceTypeID string `json:"device_type_id" validate:"required" example:"beatmania-iidx"`
	Name         string `json:"name" validate:"required" example:"IIDX 1号機"`
}

type SetDeviceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available maintenance retired" example:"maintenance"`
}

type DeviceResponse struct {
	ID           string `json:"id"`
	DeviceTypeID string `json:"device_type_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toDeviceResponse(d *device.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:           d.ID,
		DeviceTypeID: d.DeviceTypeID,
		Name:         d.Name,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

// Register godoc
// @Summary 筐体を登録
// @Tags devices
// @Accept json
// @Produce json
// @Param request body RegisterDeviceRequest true "筐体情報"
// @Success 201 {object} DeviceResponse
// @Failure 400 {object} map[string]string
// @Router /devices [post]
func (h *DeviceHandler) Register(c echo.Context) error {
	var req RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.deviceService.RegisterDevice(c.Request().Context(), req.DeviceTypeID, req.Name)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toDeviceResponse(d))
}

// GetByID godoc
// @Summary 筐体を取得
// @Tags devices
// @Produce json
// @Param id path string true "筐体ID"
// @Success 200 {object} DeviceResponse
// @Failure 404 {object} map[string]string
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetByID(c echo.Context) error {
	d, err := h.deviceService.GetDevice(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "筐体が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toDeviceResponse(d))
}

// List godoc
// @Summary 機種の筐体一覧を取得
// @Tags devices
// @Produce json
// @Param device_type_id query string true "機種ID"
// @Success 200 {array} DeviceResponse
// @Failure 400 {object} map[string]string
// @Router /devices [get]
func (h *DeviceHandler) List(c echo.Context) error {
	deviceTypeID := c.QueryParam("device_type_id")
	if deviceTypeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_type_idは必須です"})
	}

	devices, err := h.deviceService.ListDevices(c.Request().Context(), deviceTypeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*DeviceResponse, len(devices))
	for i, d := range devices {
		responses[i] = toDeviceResponse(d)
	}
	return c.JSON(http.StatusOK, responses)
}

// SetStatus godoc
// @Summary 筐体の状態を変更
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "筐体ID"
// @Param request body SetDeviceStatusRequest true "変更後の状態"
// @Success 200 {object} DeviceResponse
// @Failure 404 {object} map[string]string
// @Router /devices/{id}/status [put]
func (h *DeviceHandler) SetStatus(c echo.Context) error {
	var req SetDeviceStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.deviceService.SetDeviceStatus(c.Request().Context(), c.Param("id"), device.Status(req.Status))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "筐体が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toDeviceResponse(d))
}
