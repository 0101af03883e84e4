package handler

import (
	"context"
	"time"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/reservation"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// TimeSlotServiceInterface は時間帯サービスのインターフェース
type TimeSlotServiceInterface interface {
	CreateTemplate(ctx context.Context, input application.CreateTemplateInput) (*timeslot.TimeSlotTemplate, error)
	UpdateTemplate(ctx context.Context, id string, input application.UpdateTemplateInput) (*timeslot.TimeSlotTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	GetTemplate(ctx context.Context, id string) (*timeslot.TimeSlotTemplate, error)
	ListTemplates(ctx context.Context, filter timeslot.TemplateFilter) ([]*timeslot.TimeSlotTemplate, error)
	ListTemplatesByPriority(ctx context.Context, templateType *timeslot.TemplateType) ([]*timeslot.TimeSlotTemplate, error)
	ScheduleTimeSlots(ctx context.Context, input application.ScheduleTimeSlotsInput) ([]*timeslot.TimeSlotSchedule, error)
	GetSchedule(ctx context.Context, id string) (*timeslot.TimeSlotSchedule, error)
	ListSchedules(ctx context.Context, filter timeslot.ScheduleDateRangeFilter) ([]*timeslot.TimeSlotSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	GetAvailableTimeSlots(ctx context.Context, date time.Time, deviceTypeID string) ([]*timeslot.TimeSlotTemplate, error)
}

// RentalServiceInterface は貸出設定サービスのインターフェース
type RentalServiceInterface interface {
	CreateSettings(ctx context.Context, input application.CreateSettingsInput) (*rental.Settings, error)
	GetSettings(ctx context.Context, deviceTypeID string) (*rental.Settings, error)
	ListSettings(ctx context.Context) ([]*rental.Settings, error)
	DeleteSettings(ctx context.Context, deviceTypeID string) error
	AddTimeSlot(ctx context.Context, deviceTypeID string, slot rental.TimeSlot) (*rental.Settings, error)
	RemoveTimeSlot(ctx context.Context, deviceTypeID, slotID string) (*rental.Settings, error)
	AddPricingRule(ctx context.Context, deviceTypeID string, rule *pricing.Rule) (*rental.Settings, error)
	RemovePricingRule(ctx context.Context, deviceTypeID, ruleID string) (*rental.Settings, error)
	UpdateAvailability(ctx context.Context, deviceTypeID string, availability rental.Availability) (*rental.Settings, error)
	SetActive(ctx context.Context, deviceTypeID string, active bool) (*rental.Settings, error)
	CheckAvailability(ctx context.Context, query application.AvailabilityQuery) (bool, error)
	QuotePrice(ctx context.Context, query application.PriceQuery) (int, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
	GetSlotReservations(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int) ([]*reservation.Reservation, error)
	ApproveReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	RejectReservation(ctx context.Context, id, note string) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	CompleteReservation(ctx context.Context, id string) (*reservation.Reservation, error)
}

// DeviceServiceInterface は筐体管理サービスのインターフェース
type DeviceServiceInterface interface {
	RegisterDevice(ctx context.Context, deviceTypeID, name string) (*device.Device, error)
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	ListDevices(ctx context.Context, deviceTypeID string) ([]*device.Device, error)
	SetDeviceStatus(ctx context.Context, id string, status device.Status) (*device.Device, error)
}
