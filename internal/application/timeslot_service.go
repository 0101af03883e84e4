package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
	redisinfra "github.com/hohihiho/gameplaza-booking-v2-sub002/internal/infrastructure/redis"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/logger"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/metrics"
)

const (
	templateLockTTL = 10 * time.Second
	slotCacheTTL    = 60 * time.Second
)

// TimeSlotService はテンプレート管理とスケジュール編成を担うドメインサービス
type TimeSlotService struct {
	templateRepo timeslot.TemplateRepository
	scheduleRepo timeslot.ScheduleRepository
	lockManager  *redisinfra.LockManager
	cache        *redisinfra.SlotCache
}

func NewTimeSlotService(
	tr timeslot.TemplateRepository,
	sr timeslot.ScheduleRepository,
	lm *redisinfra.LockManager,
	cache *redisinfra.SlotCache,
) *TimeSlotService {
	return &TimeSlotService{templateRepo: tr, scheduleRepo: sr, lockManager: lm, cache: cache}
}

// CreateTemplateInput はテンプレート作成の入力
type CreateTemplateInput struct {
	Name          string
	Description   string
	Type          timeslot.TemplateType
	StartHour     int
	EndHour       int
	CreditOptions []timeslot.CreditOption
	Enable2P      bool
	Price2PExtra  int
	IsYouthTime   bool
	Priority      int
	IsActive      bool
}

// CreateTemplate は新しいテンプレートを作成する
// 名前の一意性と、同一種別の有効テンプレートとの時間帯重複を検査する
func (s *TimeSlotService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*timeslot.TimeSlotTemplate, error) {
	window, err := timeslot.NewTimeWindow(input.StartHour, input.EndHour)
	if err != nil {
		return nil, err
	}

	// 名前の一意性チェックはcheck-then-actになるため、分散ロックで競合の窓を狭める
	// 最終的な保証はストレージ側の一意制約に委ねる
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, "template:name:"+input.Name, templateLockTTL, 3, 100*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("テンプレート名ロックの取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	if err := s.checkNameUnique(ctx, input.Name, ""); err != nil {
		return nil, err
	}

	if err := s.checkNoConflict(ctx, window, input.Type, input.IsActive, ""); err != nil {
		return nil, err
	}

	template, err := timeslot.NewTimeSlotTemplate(timeslot.TemplateProps{
		Name:          input.Name,
		Description:   input.Description,
		Type:          input.Type,
		Window:        window,
		CreditOptions: input.CreditOptions,
		Enable2P:      input.Enable2P,
		Price2PExtra:  input.Price2PExtra,
		IsYouthTime:   input.IsYouthTime,
		Priority:      input.Priority,
		IsActive:      input.IsActive,
	})
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		metrics.RecordTemplateOperation("create", "error")
		return nil, fmt.Errorf("テンプレート保存に失敗: %w", err)
	}
	metrics.RecordTemplateOperation("create", "success")
	return template, nil
}

// UpdateTemplateInput はテンプレート更新の入力
type UpdateTemplateInput struct {
	Name          *string
	Description   *string
	StartHour     *int
	EndHour       *int
	CreditOptions []timeslot.CreditOption
	Enable2P      *bool
	Price2PExtra  *int
	IsYouthTime   *bool
	Priority      *int
	IsActive      *bool
}

// UpdateTemplate は既存テンプレートを更新する
func (s *TimeSlotService) UpdateTemplate(ctx context.Context, id string, input UpdateTemplateInput) (*timeslot.TimeSlotTemplate, error) {
	current, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != current.Name {
		if err := s.checkNameUnique(ctx, *input.Name, id); err != nil {
			return nil, err
		}
	}

	updates := timeslot.TemplateUpdates{
		Name:          input.Name,
		Description:   input.Description,
		CreditOptions: input.CreditOptions,
		Enable2P:      input.Enable2P,
		Price2PExtra:  input.Price2PExtra,
		IsYouthTime:   input.IsYouthTime,
		Priority:      input.Priority,
		IsActive:      input.IsActive,
	}
	if input.StartHour != nil || input.EndHour != nil {
		start := current.Window.StartHour()
		end := current.Window.EndHour()
		if input.StartHour != nil {
			start = *input.StartHour
		}
		if input.EndHour != nil {
			end = *input.EndHour
		}
		window, err := timeslot.NewTimeWindow(start, end)
		if err != nil {
			return nil, err
		}
		updates.Window = &window
	}

	updated, err := current.Update(updates)
	if err != nil {
		return nil, err
	}

	if updates.Window != nil || (input.IsActive != nil && *input.IsActive && !current.IsActive) {
		if err := s.checkNoConflict(ctx, updated.Window, updated.Type, updated.IsActive, updated.ID); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, updated); err != nil {
		metrics.RecordTemplateOperation("update", "error")
		return nil, fmt.Errorf("テンプレート保存に失敗: %w", err)
	}
	metrics.RecordTemplateOperation("update", "success")
	return updated, nil
}

// DeleteTemplate はテンプレートを削除する
// スケジュールから参照されている場合は参照日を列挙して拒否する
func (s *TimeSlotService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.templateRepo.FindByID(ctx, id); err != nil {
		return err
	}

	schedules, err := s.scheduleRepo.FindByTemplateID(ctx, id)
	if err != nil {
		return fmt.Errorf("参照スケジュールの取得に失敗: %w", err)
	}
	if len(schedules) > 0 {
		dates := make([]string, len(schedules))
		for i, sch := range schedules {
			dates[i] = sch.Date.Format("2006-01-02")
		}
		return fmt.Errorf("%w: %s", timeslot.ErrTemplateInUse, strings.Join(dates, ", "))
	}

	if err := s.templateRepo.Delete(ctx, id); err != nil {
		metrics.RecordTemplateOperation("delete", "error")
		return err
	}
	metrics.RecordTemplateOperation("delete", "success")
	return nil
}

// GetTemplate はIDからテンプレートを取得する
func (s *TimeSlotService) GetTemplate(ctx context.Context, id string) (*timeslot.TimeSlotTemplate, error) {
	return s.templateRepo.FindByID(ctx, id)
}

// ListTemplates は条件に一致するテンプレート一覧を取得する
func (s *TimeSlotService) ListTemplates(ctx context.Context, filter timeslot.TemplateFilter) ([]*timeslot.TimeSlotTemplate, error) {
	return s.templateRepo.FindAll(ctx, filter)
}

// ListTemplatesByPriority はテンプレートを優先度の降順で取得する
func (s *TimeSlotService) ListTemplatesByPriority(ctx context.Context, templateType *timeslot.TemplateType) ([]*timeslot.TimeSlotTemplate, error) {
	return s.templateRepo.FindByPriority(ctx, templateType)
}

// RepeatType はスケジュール繰り返しの種別
type RepeatType string

const (
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
)

// RepeatOption は日付展開の指定
type RepeatOption struct {
	Type       RepeatType
	EndDate    time.Time
	DaysOfWeek []int
}

// ScheduleTimeSlotsInput はスケジュール作成の入力
type ScheduleTimeSlotsInput struct {
	DeviceTypeID string
	Date         time.Time
	TemplateIDs  []string
	Repeat       *RepeatOption
}

// ScheduleTimeSlots は対象日ごとにスケジュールを作成・置換する
// 日付は順番に独立して処理される。途中でエラーが起きた場合、
// 処理済みの日付は確定したまま残りは未処理となる（リスト全体では非アトミック）
func (s *TimeSlotService) ScheduleTimeSlots(ctx context.Context, input ScheduleTimeSlotsInput) ([]*timeslot.TimeSlotSchedule, error) {
	dates, err := resolveTargetDates(input.Date, input.Repeat)
	if err != nil {
		return nil, err
	}

	templates := make([]*timeslot.TimeSlotTemplate, 0, len(input.TemplateIDs))
	for _, id := range input.TemplateIDs {
		t, err := s.templateRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	results := make([]*timeslot.TimeSlotSchedule, 0, len(dates))
	for _, date := range dates {
		schedule, err := s.scheduleForDate(ctx, date, input.DeviceTypeID, templates)
		if err != nil {
			return nil, fmt.Errorf("%sのスケジュール作成に失敗: %w", date.Format("2006-01-02"), err)
		}
		results = append(results, schedule)
	}
	return results, nil
}

// scheduleForDate は1日分のスケジュールを作成または置換する
func (s *TimeSlotService) scheduleForDate(ctx context.Context, date time.Time, deviceTypeID string, templates []*timeslot.TimeSlotTemplate) (*timeslot.TimeSlotSchedule, error) {
	existing, err := s.scheduleRepo.FindByDateAndDeviceType(ctx, date, deviceTypeID)
	switch {
	case err == nil:
		replaced, err := existing.ReplaceTemplates(templates)
		if err != nil {
			return nil, err
		}
		if err := s.scheduleRepo.Save(ctx, replaced); err != nil {
			return nil, err
		}
		s.invalidateCache(ctx, date, deviceTypeID)
		return replaced, nil
	case errors.Is(err, timeslot.ErrScheduleNotFound):
		created, err := timeslot.NewTimeSlotSchedule(date, deviceTypeID, templates)
		if err != nil {
			return nil, err
		}
		if err := s.scheduleRepo.Save(ctx, created); err != nil {
			return nil, err
		}
		s.invalidateCache(ctx, date, deviceTypeID)
		return created, nil
	default:
		return nil, err
	}
}

// GetAvailableTimeSlots は指定日・機種で利用可能なテンプレートを返す
// スケジュールが存在しない場合は登録済みの有効テンプレート全体にフォールバックする
func (s *TimeSlotService) GetAvailableTimeSlots(ctx context.Context, date time.Time, deviceTypeID string) ([]*timeslot.TimeSlotTemplate, error) {
	if s.cache != nil {
		templates, err := s.cache.GetAvailableSlots(ctx, date, deviceTypeID)
		if err == nil {
			metrics.RecordSlotCache("hit")
			logger.Debug("スロットキャッシュヒット",
				zap.String("device_type_id", deviceTypeID),
				zap.String("date", date.Format("2006-01-02")),
			)
			return templates, nil
		}
		if errors.Is(err, redisinfra.ErrCacheMiss) {
			metrics.RecordSlotCache("miss")
		} else {
			logger.Warn("スロットキャッシュ取得エラー", zap.Error(err))
		}
	}

	templates, err := s.lookupAvailableTimeSlots(ctx, date, deviceTypeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableSlots(ctx, date, deviceTypeID, templates, slotCacheTTL); cacheErr != nil {
			logger.Warn("スロットキャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return templates, nil
}

func (s *TimeSlotService) lookupAvailableTimeSlots(ctx context.Context, date time.Time, deviceTypeID string) ([]*timeslot.TimeSlotTemplate, error) {
	schedule, err := s.scheduleRepo.FindByDateAndDeviceType(ctx, date, deviceTypeID)
	if err == nil {
		return schedule.ActiveTemplates(), nil
	}
	if !errors.Is(err, timeslot.ErrScheduleNotFound) {
		return nil, err
	}
	// スケジュール未作成の日はデフォルト（有効テンプレート全体）を使う
	active := true
	return s.templateRepo.FindAll(ctx, timeslot.TemplateFilter{IsActive: &active})
}

// GetSchedule はIDからスケジュールを取得する
func (s *TimeSlotService) GetSchedule(ctx context.Context, id string) (*timeslot.TimeSlotSchedule, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// ListSchedules は日付範囲に含まれるスケジュール一覧を取得する
func (s *TimeSlotService) ListSchedules(ctx context.Context, filter timeslot.ScheduleDateRangeFilter) ([]*timeslot.TimeSlotSchedule, error) {
	return s.scheduleRepo.FindByDateRange(ctx, filter)
}

// DeleteSchedule はスケジュールを削除する
func (s *TimeSlotService) DeleteSchedule(ctx context.Context, id string) error {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, schedule.Date, schedule.DeviceTypeID)
	return nil
}

// CleanupPastSchedules は指定日より前のスケジュールを一括削除する
func (s *TimeSlotService) CleanupPastSchedules(ctx context.Context, cutoff time.Time) (int, error) {
	return s.scheduleRepo.DeleteBefore(ctx, cutoff)
}

func (s *TimeSlotService) checkNameUnique(ctx context.Context, name, excludeID string) error {
	existing, err := s.templateRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, timeslot.ErrTemplateNotFound) {
			return nil
		}
		return fmt.Errorf("テンプレート名の重複チェックに失敗: %w", err)
	}
	if existing.ID == excludeID {
		return nil
	}
	return fmt.Errorf("%w: %s", timeslot.ErrDuplicateName, name)
}

func (s *TimeSlotService) checkNoConflict(ctx context.Context, window timeslot.TimeWindow, templateType timeslot.TemplateType, isActive bool, excludeID string) error {
	if !isActive {
		// 無効なテンプレートは衝突判定の対象外
		return nil
	}
	conflicting, err := s.templateRepo.FindConflicting(ctx, window.StartHour(), window.EndHour(), templateType, excludeID)
	if err != nil {
		return fmt.Errorf("重複テンプレートの検索に失敗: %w", err)
	}
	overlaps := make([]string, 0, len(conflicting))
	for _, t := range conflicting {
		if t.IsActive && t.Window.Overlaps(window) {
			overlaps = append(overlaps, t.Name)
		}
	}
	if len(overlaps) > 0 {
		return fmt.Errorf("%w: %s", timeslot.ErrConflictingTemplates, strings.Join(overlaps, ", "))
	}
	return nil
}

// invalidateCache はスケジュール変更時にスロットキャッシュを無効化する
func (s *TimeSlotService) invalidateCache(ctx context.Context, date time.Time, deviceTypeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, date, deviceTypeID); err != nil {
		logger.Warn("スロットキャッシュ無効化エラー", zap.Error(err))
	}
}

// resolveTargetDates は繰り返し指定から対象日を展開する
// 開始日はフィルタに一致しなくても必ず含まれる（既存挙動の維持）
func resolveTargetDates(date time.Time, repeat *RepeatOption) ([]time.Time, error) {
	if repeat == nil {
		return []time.Time{date}, nil
	}
	if repeat.EndDate.Before(date) {
		return nil, timeslot.ErrInvalidRepeat
	}

	dates := []time.Time{date}
	switch repeat.Type {
	case RepeatDaily:
		for d := date.AddDate(0, 0, 1); !d.After(repeat.EndDate); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
	case RepeatWeekly:
		if len(repeat.DaysOfWeek) == 0 {
			for d := date.AddDate(0, 0, 7); !d.After(repeat.EndDate); d = d.AddDate(0, 0, 7) {
				dates = append(dates, d)
			}
			break
		}
		// 曜日フィルタ付きの週次は1日ずつ進めて対象曜日のみ採用する
		for d := date.AddDate(0, 0, 1); !d.After(repeat.EndDate); d = d.AddDate(0, 0, 1) {
			if containsWeekday(repeat.DaysOfWeek, int(d.Weekday())) {
				dates = append(dates, d)
			}
		}
	case RepeatMonthly:
		for d := date.AddDate(0, 1, 0); !d.After(repeat.EndDate); d = d.AddDate(0, 1, 0) {
			dates = append(dates, d)
		}
	default:
		return nil, timeslot.ErrInvalidRepeat
	}
	return dates, nil
}

func containsWeekday(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
