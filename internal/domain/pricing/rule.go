package pricing

import (
	"github.com/google/uuid"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// RuleType は料金ポリシーの種別を表す
type RuleType string

const (
	RuleHourly  RuleType = "hourly"
	RuleFlat    RuleType = "flat"
	RuleSession RuleType = "session"
	// RuleDynamic は拡張用。現状はhourlyと同じ計算を行う
	RuleDynamic RuleType = "dynamic"
)

// Rule は料金ルールを表す値オブジェクト
// 一度構築したら変更しない
type Rule struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           RuleType `json:"type"`
	BasePrice      int      `json:"base_price"`
	DaysOfWeek     []int    `json:"days_of_week,omitempty"`
	StartHour      *int     `json:"start_hour,omitempty"`
	EndHour        *int     `json:"end_hour,omitempty"`
	PlayMode       string   `json:"play_mode,omitempty"`
	PerPlayerPrice int      `json:"per_player_price"`
	MinPrice       *int     `json:"min_price,omitempty"`
	MaxPrice       *int     `json:"max_price,omitempty"`
	SessionMinutes *int     `json:"session_minutes,omitempty"`
	Priority       int      `json:"priority"`
}

// RuleProps は料金ルール作成時のプロパティ
type RuleProps struct {
	Name           string
	Type           RuleType
	BasePrice      int
	DaysOfWeek     []int
	StartHour      *int
	EndHour        *int
	PlayMode       string
	PerPlayerPrice int
	MinPrice       *int
	MaxPrice       *int
	SessionMinutes *int
	Priority       int
}

// NewRule は新しい料金ルールを作成する
func NewRule(props RuleProps) (*Rule, error) {
	r := &Rule{
		ID:             uuid.New().String(),
		Name:           props.Name,
		Type:           props.Type,
		BasePrice:      props.BasePrice,
		DaysOfWeek:     props.DaysOfWeek,
		StartHour:      props.StartHour,
		EndHour:        props.EndHour,
		PlayMode:       props.PlayMode,
		PerPlayerPrice: props.PerPlayerPrice,
		MinPrice:       props.MinPrice,
		MaxPrice:       props.MaxPrice,
		SessionMinutes: props.SessionMinutes,
		Priority:       props.Priority,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate は料金ルールの検証を行う
func (r *Rule) Validate() error {
	if r.Name == "" {
		return ErrRuleNameRequired
	}
	switch r.Type {
	case RuleHourly, RuleFlat, RuleSession, RuleDynamic:
	default:
		return ErrInvalidRuleType
	}
	if r.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	if r.PerPlayerPrice < 0 {
		return ErrInvalidPerPlayerPrice
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return ErrInvalidDayOfWeek
		}
	}
	// 時間帯条件は両方指定か両方省略のみ
	if (r.StartHour == nil) != (r.EndHour == nil) {
		return ErrInvalidHourCondition
	}
	if r.StartHour != nil {
		if _, err := timeslot.NewTimeWindow(*r.StartHour, *r.EndHour); err != nil {
			return ErrInvalidHourCondition
		}
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		return ErrInvalidPriceRange
	}
	if r.Type == RuleSession {
		if r.SessionMinutes == nil || *r.SessionMinutes <= 0 {
			return ErrSessionMinutesRequired
		}
	}
	return nil
}

// AppliesTo は指定の曜日・時刻・プレイモードにルールが適用されるかを返す
// 条件が未設定の軸は常に一致する
func (r *Rule) AppliesTo(dayOfWeek, hour int, playMode string) bool {
	if len(r.DaysOfWeek) > 0 && !containsDay(r.DaysOfWeek, dayOfWeek) {
		return false
	}
	if r.StartHour != nil {
		window, err := timeslot.NewTimeWindow(*r.StartHour, *r.EndHour)
		if err != nil || !window.ContainsHour(hour) {
			return false
		}
	}
	if r.PlayMode != "" && r.PlayMode != playMode {
		return false
	}
	return true
}

// CalculatePrice は時間帯とプレイ人数から料金を計算する
// 日跨ぎを考慮した時間数に基づき、ポリシー種別ごとの計算後に
// 人数追加料金を加算し、最後に上下限でクランプする
func (r *Rule) CalculatePrice(startHour, endHour, playerCount int) int {
	hours := timeslot.HourSpan(startHour, endHour)

	var price int
	switch r.Type {
	case RuleFlat:
		price = r.BasePrice
	case RuleSession:
		sessions := (hours*60 + *r.SessionMinutes - 1) / *r.SessionMinutes
		price = r.BasePrice * sessions
	default: // hourly, dynamic
		price = r.BasePrice * hours
	}

	if playerCount > 1 {
		price += r.PerPlayerPrice * (playerCount - 1)
	}

	return r.clamp(price)
}

// clamp は料金を[MinPrice, MaxPrice]に収める
func (r *Rule) clamp(price int) int {
	if r.MinPrice != nil && price < *r.MinPrice {
		price = *r.MinPrice
	}
	if r.MaxPrice != nil && price > *r.MaxPrice {
		price = *r.MaxPrice
	}
	return price
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
