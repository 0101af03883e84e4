package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// Settings は機種ごとの貸出設定（時間帯・料金ルール・台数）を集約するエンティティ
// 変更は必ず新しいインスタンスを返す
type Settings struct {
	ID           string          `json:"id"`
	DeviceTypeID string          `json:"device_type_id"`
	TimeSlots    []TimeSlot      `json:"time_slots"`
	PricingRules []*pricing.Rule `json:"pricing_rules"`
	Availability Availability    `json:"availability"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewSettings は新しい貸出設定を作成する
func NewSettings(deviceTypeID string, slots []TimeSlot, rules []*pricing.Rule, availability Availability) (*Settings, error) {
	if deviceTypeID == "" {
		return nil, ErrDeviceTypeRequired
	}
	if err := validateSlots(slots); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ErrNoPricing
	}
	if err := availability.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Settings{
		ID:           uuid.New().String(),
		DeviceTypeID: deviceTypeID,
		TimeSlots:    copySlots(slots),
		PricingRules: copyRules(rules),
		Availability: availability,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAvailableAt は指定曜日・時刻に貸出可能かを返す
// メンテナンス枠は貸出可能と見なさない
func (s *Settings) IsAvailableAt(dayOfWeek, hour int) bool {
	if !s.IsActive {
		return false
	}
	for _, slot := range s.TimeSlots {
		if !slot.IsActive || slot.Type == SlotMaintenance {
			continue
		}
		if slot.MatchesDay(dayOfWeek) && slot.ContainsHour(hour) {
			return true
		}
	}
	return false
}

// CalculatePrice は指定時間帯の料金を計算する
// 時間帯内に貸出可能な時刻が1つもなければエラー。適用ルールは
// 開始時刻または最終時刻に一致するものから最も優先度の高いものを選ぶ
// （同率優先度はルール配列で先のものが勝つ）
func (s *Settings) CalculatePrice(dayOfWeek, startHour, endHour int, playMode string, playerCount int) (int, error) {
	hours := timeslot.HoursInRange(startHour, endHour)
	if len(hours) == 0 {
		return 0, ErrNoAvailableSlot
	}
	available := false
	for _, h := range hours {
		if s.IsAvailableAt(dayOfWeek, h) {
			available = true
			break
		}
	}
	if !available {
		return 0, ErrNoAvailableSlot
	}

	lastHour := hours[len(hours)-1]
	var matched *pricing.Rule
	for _, rule := range s.PricingRules {
		if !rule.AppliesTo(dayOfWeek, startHour, playMode) && !rule.AppliesTo(dayOfWeek, lastHour, playMode) {
			continue
		}
		if matched == nil || rule.Priority > matched.Priority {
			matched = rule
		}
	}
	if matched == nil {
		return 0, ErrNoPricingMatch
	}
	return matched.CalculatePrice(startHour, endHour, playerCount), nil
}

// AddTimeSlot は時間帯を追加した新しい設定を返す
// 既存の時間帯と重複する場合はエラーを返す
func (s *Settings) AddTimeSlot(slot TimeSlot) (*Settings, error) {
	for _, existing := range s.TimeSlots {
		if existing.OverlapsWith(slot) {
			return nil, ErrOverlappingTimeSlot
		}
	}
	copied := s.clone()
	copied.TimeSlots = append(copied.TimeSlots, slot)
	return copied, nil
}

// RemoveTimeSlot は時間帯を取り除いた新しい設定を返す
// 最後の1つは取り除けない
func (s *Settings) RemoveTimeSlot(slotID string) (*Settings, error) {
	slots := make([]TimeSlot, 0, len(s.TimeSlots))
	for _, slot := range s.TimeSlots {
		if slot.ID != slotID {
			slots = append(slots, slot)
		}
	}
	if len(slots) == len(s.TimeSlots) {
		return nil, ErrTimeSlotNotFound
	}
	if len(slots) == 0 {
		return nil, ErrLastTimeSlot
	}
	copied := s.clone()
	copied.TimeSlots = slots
	return copied, nil
}

// AddPricingRule は料金ルールを追加した新しい設定を返す
func (s *Settings) AddPricingRule(rule *pricing.Rule) (*Settings, error) {
	if rule == nil {
		return nil, ErrNoPricing
	}
	copied := s.clone()
	copied.PricingRules = append(copied.PricingRules, rule)
	return copied, nil
}

// RemovePricingRule は料金ルールを取り除いた新しい設定を返す
// 最後の1つは取り除けない
func (s *Settings) RemovePricingRule(ruleID string) (*Settings, error) {
	rules := make([]*pricing.Rule, 0, len(s.PricingRules))
	for _, rule := range s.PricingRules {
		if rule.ID != ruleID {
			rules = append(rules, rule)
		}
	}
	if len(rules) == len(s.PricingRules) {
		return nil, pricing.ErrRuleNotFound
	}
	if len(rules) == 0 {
		return nil, ErrLastPricingRule
	}
	copied := s.clone()
	copied.PricingRules = rules
	return copied, nil
}

// UpdateAvailability は台数設定を差し替えた新しい設定を返す
func (s *Settings) UpdateAvailability(availability Availability) (*Settings, error) {
	if err := availability.Validate(); err != nil {
		return nil, err
	}
	copied := s.clone()
	copied.Availability = availability
	return copied, nil
}

// Activate は設定を有効化した新しいインスタンスを返す
func (s *Settings) Activate() *Settings {
	copied := s.clone()
	copied.IsActive = true
	return copied
}

// Deactivate は設定を無効化した新しいインスタンスを返す
func (s *Settings) Deactivate() *Settings {
	copied := s.clone()
	copied.IsActive = false
	return copied
}

func (s *Settings) clone() *Settings {
	copied := *s
	copied.TimeSlots = copySlots(s.TimeSlots)
	copied.PricingRules = copyRules(s.PricingRules)
	copied.UpdatedAt = time.Now()
	return &copied
}

// validateSlots は時間帯リストの検証を行う
// 空・(曜日,開始,終了)の重複・時間帯同士の重なりを拒否する
func validateSlots(slots []TimeSlot) error {
	if len(slots) == 0 {
		return ErrNoTimeSlots
	}
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].sameRange(slots[j]) {
				return ErrDuplicateTimeSlot
			}
			if slots[i].OverlapsWith(slots[j]) {
				return ErrOverlappingTimeSlot
			}
		}
	}
	return nil
}

func copySlots(slots []TimeSlot) []TimeSlot {
	copied := make([]TimeSlot, len(slots))
	copy(copied, slots)
	return copied
}

func copyRules(rules []*pricing.Rule) []*pricing.Rule {
	copied := make([]*pricing.Rule, len(rules))
	copy(copied, rules)
	return copied
}
