package rental

import (
	"github.com/google/uuid"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// EveryDay は曜日指定なし（毎日）を表す
const EveryDay = -1

// SlotType は貸出時間帯の種別を表す
type SlotType string

const (
	SlotRegular     SlotType = "regular"
	SlotOvernight   SlotType = "overnight"
	SlotMaintenance SlotType = "maintenance"
	SlotSpecial     SlotType = "special"
)

// TimeSlot は週単位で繰り返す貸出可能時間帯を表す値オブジェクト
type TimeSlot struct {
	ID        string              `json:"id"`
	DayOfWeek int                 `json:"day_of_week"`
	Window    timeslot.TimeWindow `json:"window"`
	Type      SlotType            `json:"type"`
	Name      string              `json:"name,omitempty"`
	IsActive  bool                `json:"is_active"`
}

// NewTimeSlot は貸出時間帯を作成する
func NewTimeSlot(dayOfWeek int, window timeslot.TimeWindow, slotType SlotType, name string, isActive bool) (TimeSlot, error) {
	if dayOfWeek != EveryDay && (dayOfWeek < 0 || dayOfWeek > 6) {
		return TimeSlot{}, ErrInvalidDayValue
	}
	switch slotType {
	case SlotRegular, SlotOvernight, SlotMaintenance, SlotSpecial:
	default:
		return TimeSlot{}, ErrInvalidSlotType
	}
	return TimeSlot{
		ID:        uuid.New().String(),
		DayOfWeek: dayOfWeek,
		Window:    window,
		Type:      slotType,
		Name:      name,
		IsActive:  isActive,
	}, nil
}

// MatchesDay は指定曜日に適用されるかを返す
func (s TimeSlot) MatchesDay(dayOfWeek int) bool {
	return s.DayOfWeek == EveryDay || s.DayOfWeek == dayOfWeek
}

// ContainsHour は指定時刻が時間帯に含まれるかを返す
func (s TimeSlot) ContainsHour(hour int) bool {
	return s.Window.ContainsHour(hour)
}

// OverlapsWith は他の時間帯と重なるかを返す
// 異なる具体曜日同士は重ならない。どちらかが毎日の場合は曜日を問わず比較する
func (s TimeSlot) OverlapsWith(other TimeSlot) bool {
	if s.DayOfWeek != EveryDay && other.DayOfWeek != EveryDay && s.DayOfWeek != other.DayOfWeek {
		return false
	}
	return s.Window.Overlaps(other.Window)
}

// sameRange は曜日・開始・終了が完全に一致するかを返す
func (s TimeSlot) sameRange(other TimeSlot) bool {
	return s.DayOfWeek == other.DayOfWeek &&
		s.Window.StartHour() == other.Window.StartHour() &&
		s.Window.EndHour() == other.Window.EndHour()
}
