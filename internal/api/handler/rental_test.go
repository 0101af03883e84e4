package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// MockRentalService はRentalServiceInterfaceのモック
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateSettings(ctx context.Context, input application.CreateSettingsInput) (*rental.Settings, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) GetSettings(ctx context.Context, deviceTypeID string) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) ListSettings(ctx context.Context) ([]*rental.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rental.Settings), args.Error(1)
}

func (m *MockRentalService) DeleteSettings(ctx context.Context, deviceTypeID string) error {
	args := m.Called(ctx, deviceTypeID)
	return args.Error(0)
}

func (m *MockRentalService) AddTimeSlot(ctx context.Context, deviceTypeID string, slot rental.TimeSlot) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) RemoveTimeSlot(ctx context.Context, deviceTypeID, slotID string) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) AddPricingRule(ctx context.Context, deviceTypeID string, rule *pricing.Rule) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, rule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) RemovePricingRule(ctx context.Context, deviceTypeID, ruleID string) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) UpdateAvailability(ctx context.Context, deviceTypeID string, availability rental.Availability) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, availability)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) SetActive(ctx context.Context, deviceTypeID string, active bool) (*rental.Settings, error) {
	args := m.Called(ctx, deviceTypeID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Settings), args.Error(1)
}

func (m *MockRentalService) CheckAvailability(ctx context.Context, query application.AvailabilityQuery) (bool, error) {
	args := m.Called(ctx, query)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentalService) QuotePrice(ctx context.Context, query application.PriceQuery) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

func newTestSettings(t *testing.T, deviceTypeID string) *rental.Settings {
	t.Helper()
	window, err := timeslot.NewTimeWindow(10, 22)
	require.NoError(t, err)
	slot, err := rental.NewTimeSlot(-1, window, rental.SlotRegular, "通常営業", true)
	require.NoError(t, err)
	rule, err := pricing.NewRule(pricing.RuleProps{
		Name:      "通常料金",
		Type:      pricing.RuleHourly,
		BasePrice: 1000,
	})
	require.NoError(t, err)
	availability, err := rental.NewAvailability(4, 0, 2, 1)
	require.NoError(t, err)
	settings, err := rental.NewSettings(deviceTypeID, []rental.TimeSlot{slot}, []*pricing.Rule{rule}, availability)
	require.NoError(t, err)
	return settings
}

func TestRentalHandler_Create(t *testing.T) {
	e := NewTestEcho()

	createBody := `{
		"device_type_id": "beatmania-iidx",
		"time_slots": [
			{"day_of_week": -1, "start_hour": 10, "end_hour": 22, "type": "regular", "name": "通常営業", "is_active": true}
		],
		"pricing_rules": [
			{"name": "通常料金", "type": "hourly", "base_price": 1000}
		],
		"availability": {"total_units": 4, "max_units_per_reservation": 2, "buffer_units": 1}
	}`

	t.Run("正常に貸出設定を作成できる", func(t *testing.T) {
		mockService := new(MockRentalService)
		expected := newTestSettings(t, "beatmania-iidx")
		mockService.On("CreateSettings", mock.Anything, mock.AnythingOfType("application.CreateSettingsInput")).
			Return(expected, nil)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/rental/settings", strings.NewReader(createBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp RentalSettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "beatmania-iidx", resp.DeviceTypeID)
		assert.Len(t, resp.TimeSlots, 1)
		assert.Len(t, resp.PricingRules, 1)
		assert.Equal(t, 4, resp.Availability.TotalUnits)

		mockService.AssertExpectations(t)
	})

	t.Run("既存の機種設定があれば409", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("CreateSettings", mock.Anything, mock.Anything).
			Return(nil, rental.ErrSettingsAlreadyExists)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/rental/settings", strings.NewReader(createBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRentalHandler_Get(t *testing.T) {
	e := NewTestEcho()

	t.Run("貸出設定を取得できる", func(t *testing.T) {
		mockService := new(MockRentalService)
		expected := newTestSettings(t, "maimai")
		mockService.On("GetSettings", mock.Anything, "maimai").Return(expected, nil)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/rental/settings/maimai", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("maimai")

		err := handler.Get(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("設定が存在しなければ404", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("GetSettings", mock.Anything, "unknown").Return(nil, rental.ErrSettingsNotFound)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/rental/settings/unknown", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("unknown")

		err := handler.Get(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRentalHandler_List(t *testing.T) {
	e := NewTestEcho()

	t.Run("全機種の貸出設定を一覧できる", func(t *testing.T) {
		mockService := new(MockRentalService)
		expected := []*rental.Settings{
			newTestSettings(t, "beatmania-iidx"),
			newTestSettings(t, "maimai"),
		}
		mockService.On("ListSettings", mock.Anything).Return(expected, nil)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/rental/settings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []RentalSettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "beatmania-iidx", resp[0].DeviceTypeID)
		assert.Equal(t, "maimai", resp[1].DeviceTypeID)
	})
}

func TestRentalHandler_Delete(t *testing.T) {
	e := NewTestEcho()

	t.Run("貸出設定を削除できる", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("DeleteSettings", mock.Anything, "maimai").Return(nil)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/rental/settings/maimai", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("maimai")

		err := handler.Delete(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("設定が存在しなければ404", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("DeleteSettings", mock.Anything, "unknown").Return(rental.ErrSettingsNotFound)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/rental/settings/unknown", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("unknown")

		err := handler.Delete(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRentalHandler_RemoveTimeSlot(t *testing.T) {
	e := NewTestEcho()

	t.Run("最後の時間帯は削除できず409", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("RemoveTimeSlot", mock.Anything, "maimai", "slot-1").
			Return(nil, rental.ErrLastTimeSlot)

		handler := NewRentalHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/rental/settings/maimai/time-slots/slot-1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id", "slot_id")
		c.SetParamValues("maimai", "slot-1")

		err := handler.RemoveTimeSlot(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRentalHandler_UpdateAvailability(t *testing.T) {
	e := NewTestEcho()

	t.Run("台数設定を更新できる", func(t *testing.T) {
		mockService := new(MockRentalService)
		expected := newTestSettings(t, "maimai")
		availability, err := rental.NewAvailability(6, 1, 3, 0)
		require.NoError(t, err)
		mockService.On("UpdateAvailability", mock.Anything, "maimai", availability).
			Return(expected, nil)

		handler := NewRentalHandler(mockService)

		reqBody := `{"total_units": 6, "min_units_available": 1, "max_units_per_reservation": 3, "buffer_units": 0}`
		req := httptest.NewRequest(http.MethodPut, "/rental/settings/maimai/availability", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("maimai")

		err = handler.UpdateAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("予約上限が台数を超えるなら400", func(t *testing.T) {
		mockService := new(MockRentalService)
		handler := NewRentalHandler(mockService)

		reqBody := `{"total_units": 2, "max_units_per_reservation": 5, "buffer_units": 0}`
		req := httptest.NewRequest(http.MethodPut, "/rental/settings/maimai/availability", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("device_type_id")
		c.SetParamValues("maimai")

		err := handler.UpdateAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRentalHandler_CheckAvailability(t *testing.T) {
	e := NewTestEcho()

	t.Run("空きがあればtrueを返す", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("CheckAvailability", mock.Anything, mock.AnythingOfType("application.AvailabilityQuery")).
			Return(true, nil)

		handler := NewRentalHandler(mockService)

		reqBody := `{"device_type_id": "beatmania-iidx", "date": "2099-08-01", "start_hour": 22, "end_hour": 26, "units": 2}`
		req := httptest.NewRequest(http.MethodPost, "/rental/availability/check", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CheckAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp["available"])
	})

	t.Run("空きがなければfalseを返す", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("CheckAvailability", mock.Anything, mock.Anything).Return(false, nil)

		handler := NewRentalHandler(mockService)

		reqBody := `{"device_type_id": "beatmania-iidx", "date": "2099-08-01", "start_hour": 22, "end_hour": 26, "units": 4}`
		req := httptest.NewRequest(http.MethodPost, "/rental/availability/check", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CheckAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp["available"])
	})
}

func TestRentalHandler_QuotePrice(t *testing.T) {
	e := NewTestEcho()

	t.Run("料金を見積もれる", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("QuotePrice", mock.Anything, mock.AnythingOfType("application.PriceQuery")).
			Return(5000, nil)

		handler := NewRentalHandler(mockService)

		reqBody := `{"device_type_id": "maimai", "date": "2099-08-01", "start_hour": 13, "end_hour": 18, "player_count": 1}`
		req := httptest.NewRequest(http.MethodPost, "/rental/price/quote", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.QuotePrice(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 5000, resp["price"])
	})

	t.Run("適用できる料金ルールがなければ422", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("QuotePrice", mock.Anything, mock.Anything).
			Return(0, rental.ErrNoPricingMatch)

		handler := NewRentalHandler(mockService)

		reqBody := `{"device_type_id": "maimai", "date": "2099-08-01", "start_hour": 3, "end_hour": 5, "player_count": 1}`
		req := httptest.NewRequest(http.MethodPost, "/rental/price/quote", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.QuotePrice(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
