package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// MockTimeSlotService はTimeSlotServiceInterfaceのモック
type MockTimeSlotService struct {
	mock.Mock
}

func (m *MockTimeSlotService) CreateTemplate(ctx context.Context, input application.CreateTemplateInput) (*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeslot.TimeSlotTemplate), args.Error(1)
}

func (m *MockTimeSlotService) UpdateTemplate(ctx context.Context, id string, input application.UpdateTemplateInput) (*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeslot.TimeSlotTemplate), args.Error(1)
}

func (m *MockTimeSlotService) DeleteTemplate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTimeSlotService) GetTemplate(ctx context.Context, id string) (*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeslot.TimeSlotTemplate), args.Error(1)
}

func (m *MockTimeSlotService) ListTemplates(ctx context.Context, filter timeslot.TemplateFilter) ([]*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeslot.TimeSlotTemplate), args.Error(1)
}

func (m *MockTimeSlotService) ListTemplatesByPriority(ctx context.Context, templateType *timeslot.TemplateType) ([]*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, templateType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeslot.TimeSlotTemplate), args.Error(1)
}

func (m *MockTimeSlotService) ScheduleTimeSlots(ctx context.Context, input application.ScheduleTimeSlotsInput) ([]*timeslot.TimeSlotSchedule, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeslot.TimeSlotSchedule), args.Error(1)
}

func (m *MockTimeSlotService) GetSchedule(ctx context.Context, id string) (*timeslot.TimeSlotSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeslot.TimeSlotSchedule), args.Error(1)
}

func (m *MockTimeSlotService) ListSchedules(ctx context.Context, filter timeslot.ScheduleDateRangeFilter) ([]*timeslot.TimeSlotSchedule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeslot.TimeSlotSchedule), args.Error(1)
}

func (m *MockTimeSlotService) DeleteSchedule(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTimeSlotService) GetAvailableTimeSlots(ctx context.Context, date time.Time, deviceTypeID string) ([]*timeslot.TimeSlotTemplate, error) {
	args := m.Called(ctx, date, deviceTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeslot.TimeSlotTemplate), args.Error(1)
}

func newTestTemplate(t *testing.T, name string, tplType timeslot.TemplateType, start, end int) *timeslot.TimeSlotTemplate {
	t.Helper()
	window, err := timeslot.NewTimeWindow(start, end)
	require.NoError(t, err)
	tpl, err := timeslot.NewTimeSlotTemplate(timeslot.TemplateProps{
		Name:   name,
		Type:   tplType,
		Window: window,
		CreditOptions: []timeslot.CreditOption{
			{Type: timeslot.CreditFreeplay, Hours: []int{4}, Prices: map[int]int{4: 25000}},
		},
		IsActive: true,
	})
	require.NoError(t, err)
	return tpl
}

func TestTemplateHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にテンプレートを作成できる", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		expected := newTestTemplate(t, "朝イチ4時間パック", timeslot.TemplateEarly, 10, 14)

		mockService.On("CreateTemplate", mock.Anything, mock.AnythingOfType("application.CreateTemplateInput")).
			Return(expected, nil)

		handler := NewTemplateHandler(mockService)

		reqBody := `{
			"name": "朝イチ4時間パック",
			"type": "early",
			"start_hour": 10,
			"end_hour": 14,
			"credit_options": [
				{"type": "freeplay", "hours": [4], "prices": {"4": 25000}}
			],
			"is_active": true
		}`
		req := httptest.NewRequest(http.MethodPost, "/time-slots/templates", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp TemplateResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, resp.ID)
		assert.Equal(t, "朝イチ4時間パック", resp.Name)
		assert.Equal(t, 10, resp.StartHour)
		assert.Equal(t, 14, resp.EndHour)

		mockService.AssertExpectations(t)
	})

	t.Run("名前重複は409を返す", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		mockService.On("CreateTemplate", mock.Anything, mock.Anything).
			Return(nil, timeslot.ErrDuplicateName)

		handler := NewTemplateHandler(mockService)

		reqBody := `{
			"name": "重複パック",
			"type": "early",
			"start_hour": 10,
			"end_hour": 14,
			"credit_options": [
				{"type": "freeplay", "hours": [4], "prices": {"4": 25000}}
			]
		}`
		req := httptest.NewRequest(http.MethodPost, "/time-slots/templates", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("時間帯重複は409を返す", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		mockService.On("CreateTemplate", mock.Anything, mock.Anything).
			Return(nil, timeslot.ErrConflictingTemplates)

		handler := NewTemplateHandler(mockService)

		reqBody := `{
			"name": "かぶりパック",
			"type": "early",
			"start_hour": 12,
			"end_hour": 16,
			"credit_options": [
				{"type": "freeplay", "hours": [4], "prices": {"4": 25000}}
			]
		}`
		req := httptest.NewRequest(http.MethodPost, "/time-slots/templates", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("必須フィールド欠落はバリデーションエラー", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		handler := NewTemplateHandler(mockService)

		reqBody := `{"type": "early", "start_hour": 10, "end_hour": 14}`
		req := httptest.NewRequest(http.MethodPost, "/time-slots/templates", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestTemplateHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("テンプレートを取得できる", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		expected := newTestTemplate(t, "オールナイト", timeslot.TemplateOvernight, 22, 29)
		mockService.On("GetTemplate", mock.Anything, expected.ID).Return(expected, nil)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/time-slots/templates/"+expected.ID, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(expected.ID)

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp TemplateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 22, resp.StartHour)
		assert.Equal(t, 29, resp.EndHour)
	})

	t.Run("存在しないIDは404", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		mockService.On("GetTemplate", mock.Anything, "missing").Return(nil, timeslot.ErrTemplateNotFound)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/time-slots/templates/missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTemplateHandler_List(t *testing.T) {
	e := NewTestEcho()

	t.Run("種別で絞り込んで一覧を取得できる", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		templates := []*timeslot.TimeSlotTemplate{
			newTestTemplate(t, "早朝A", timeslot.TemplateEarly, 8, 12),
			newTestTemplate(t, "早朝B", timeslot.TemplateEarly, 12, 16),
		}
		early := timeslot.TemplateEarly
		mockService.On("ListTemplates", mock.Anything, timeslot.TemplateFilter{Type: &early}).
			Return(templates, nil)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/time-slots/templates?type=early", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []*TemplateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("sort=priorityで優先度降順の一覧を取得できる", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		templates := []*timeslot.TimeSlotTemplate{
			newTestTemplate(t, "優先", timeslot.TemplateEarly, 8, 12),
			newTestTemplate(t, "通常", timeslot.TemplateEarly, 12, 16),
		}
		early := timeslot.TemplateEarly
		mockService.On("ListTemplatesByPriority", mock.Anything, &early).Return(templates, nil)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/time-slots/templates?type=early&sort=priority", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertNotCalled(t, "ListTemplates", mock.Anything, mock.Anything)
	})
}

func TestTemplateHandler_Delete(t *testing.T) {
	e := NewTestEcho()

	t.Run("テンプレートを削除できる", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		mockService.On("DeleteTemplate", mock.Anything, "tpl-1").Return(nil)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/time-slots/templates/tpl-1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("tpl-1")

		err := handler.Delete(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("スケジュールで使用中なら409", func(t *testing.T) {
		mockService := new(MockTimeSlotService)
		mockService.On("DeleteTemplate", mock.Anything, "tpl-used").Return(timeslot.ErrTemplateInUse)

		handler := NewTemplateHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/time-slots/templates/tpl-used", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("tpl-used")

		err := handler.Delete(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
