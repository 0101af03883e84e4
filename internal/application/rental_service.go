package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/reservation"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/metrics"
)

// RentalService は機種ごとの貸出設定の管理と空き・料金の問い合わせを担う
type RentalService struct {
	settingsRepo    rental.SettingsRepository
	reservationRepo reservation.Repository
	deviceRepo      device.Repository
}

func NewRentalService(sr rental.SettingsRepository, rr reservation.Repository, dr device.Repository) *RentalService {
	return &RentalService{settingsRepo: sr, reservationRepo: rr, deviceRepo: dr}
}

// CreateSettingsInput は貸出設定作成の入力
type CreateSettingsInput struct {
	DeviceTypeID string
	TimeSlots    []rental.TimeSlot
	PricingRules []*pricing.Rule
	Availability rental.Availability
}

// CreateSettings は機種の貸出設定を新規作成する
func (s *RentalService) CreateSettings(ctx context.Context, input CreateSettingsInput) (*rental.Settings, error) {
	settings, err := rental.NewSettings(input.DeviceTypeID, input.TimeSlots, input.PricingRules, input.Availability)
	if err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("貸出設定の保存に失敗: %w", err)
	}
	return settings, nil
}

// GetSettings は機種の貸出設定を取得する
func (s *RentalService) GetSettings(ctx context.Context, deviceTypeID string) (*rental.Settings, error) {
	return s.settingsRepo.FindByDeviceType(ctx, deviceTypeID)
}

// ListSettings は全機種の貸出設定一覧を取得する
func (s *RentalService) ListSettings(ctx context.Context) ([]*rental.Settings, error) {
	return s.settingsRepo.FindAll(ctx)
}

// DeleteSettings は機種の貸出設定を削除する
func (s *RentalService) DeleteSettings(ctx context.Context, deviceTypeID string) error {
	settings, err := s.settingsRepo.FindByDeviceType(ctx, deviceTypeID)
	if err != nil {
		return err
	}
	return s.settingsRepo.Delete(ctx, settings.ID)
}

// AddTimeSlot は貸出時間帯を追加する
func (s *RentalService) AddTimeSlot(ctx context.Context, deviceTypeID string, slot rental.TimeSlot) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		return settings.AddTimeSlot(slot)
	})
}

// RemoveTimeSlot は貸出時間帯を削除する
func (s *RentalService) RemoveTimeSlot(ctx context.Context, deviceTypeID, slotID string) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		return settings.RemoveTimeSlot(slotID)
	})
}

// AddPricingRule は料金ルールを追加する
func (s *RentalService) AddPricingRule(ctx context.Context, deviceTypeID string, rule *pricing.Rule) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		return settings.AddPricingRule(rule)
	})
}

// RemovePricingRule は料金ルールを削除する
func (s *RentalService) RemovePricingRule(ctx context.Context, deviceTypeID, ruleID string) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		return settings.RemovePricingRule(ruleID)
	})
}

// UpdateAvailability は台数設定を更新する
func (s *RentalService) UpdateAvailability(ctx context.Context, deviceTypeID string, availability rental.Availability) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		return settings.UpdateAvailability(availability)
	})
}

// SetActive は貸出設定の有効・無効を切り替える
func (s *RentalService) SetActive(ctx context.Context, deviceTypeID string, active bool) (*rental.Settings, error) {
	return s.mutate(ctx, deviceTypeID, func(settings *rental.Settings) (*rental.Settings, error) {
		if active {
			return settings.Activate(), nil
		}
		return settings.Deactivate(), nil
	})
}

// mutate は設定を読み込み、純粋な変更を適用して保存する
func (s *RentalService) mutate(ctx context.Context, deviceTypeID string, fn func(*rental.Settings) (*rental.Settings, error)) (*rental.Settings, error) {
	settings, err := s.settingsRepo.FindByDeviceType(ctx, deviceTypeID)
	if err != nil {
		return nil, err
	}
	updated, err := fn(settings)
	if err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("貸出設定の保存に失敗: %w", err)
	}
	return updated, nil
}

// AvailabilityQuery は空き確認の入力
type AvailabilityQuery struct {
	DeviceTypeID string
	Date         time.Time
	StartHour    int
	EndHour      int
	Units        int
}

// CheckAvailability は指定時間帯に指定台数を貸し出せるかを返す
// 貸出設定の時間帯・台数設定と、同時間帯の予約済み台数を突き合わせる
func (s *RentalService) CheckAvailability(ctx context.Context, query AvailabilityQuery) (bool, error) {
	settings, err := s.settingsRepo.FindByDeviceType(ctx, query.DeviceTypeID)
	if err != nil {
		return false, err
	}

	registered, err := s.deviceRepo.CountByType(ctx, query.DeviceTypeID)
	if err != nil {
		return false, fmt.Errorf("筐体数の取得に失敗: %w", err)
	}
	if registered == 0 {
		return false, device.ErrNoDevicesRegistered
	}

	day := int(query.Date.Weekday())
	open := false
	for _, h := range timeslot.HoursInRange(query.StartHour, query.EndHour) {
		if settings.IsAvailableAt(day, h) {
			open = true
			break
		}
	}
	if !open {
		return false, nil
	}

	rented, err := s.reservationRepo.CountUnitsByTimeSlot(ctx, query.Date, query.DeviceTypeID, query.StartHour, query.EndHour, reservation.ActiveStatuses)
	if err != nil {
		return false, fmt.Errorf("予約台数の集計に失敗: %w", err)
	}
	return settings.Availability.CanRent(query.Units, rented), nil
}

// PriceQuery は料金見積りの入力
type PriceQuery struct {
	DeviceTypeID string
	Date         time.Time
	StartHour    int
	EndHour      int
	PlayMode     string
	PlayerCount  int
}

// QuotePrice は指定時間帯の料金を見積もる
func (s *RentalService) QuotePrice(ctx context.Context, query PriceQuery) (int, error) {
	settings, err := s.settingsRepo.FindByDeviceType(ctx, query.DeviceTypeID)
	if err != nil {
		metrics.RecordPriceQuote("error")
		return 0, err
	}
	price, err := settings.CalculatePrice(int(query.Date.Weekday()), query.StartHour, query.EndHour, query.PlayMode, query.PlayerCount)
	switch {
	case err == nil:
		metrics.RecordPriceQuote("success")
	case errors.Is(err, rental.ErrNoPricingMatch):
		metrics.RecordPriceQuote("no_match")
	default:
		metrics.RecordPriceQuote("error")
	}
	return price, err
}
