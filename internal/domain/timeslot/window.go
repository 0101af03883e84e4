package timeslot

import "encoding/json"

// 拡張時刻の範囲。24〜29は翌日の0〜5時を表す
const (
	MinHour = 0
	MaxHour = 29
)

// TimeWindow は拡張0〜29時制の時間帯 [startHour, endHour) を表す値オブジェクト
// 一度構築したら変更しない
type TimeWindow struct {
	startHour int
	endHour   int
}

// NewTimeWindow は時間帯を作成する
// 時刻が0〜29の範囲外、または同一日内で開始>=終了の場合はエラーを返す
func NewTimeWindow(startHour, endHour int) (TimeWindow, error) {
	if startHour < MinHour || startHour > MaxHour || endHour < MinHour || endHour > MaxHour {
		return TimeWindow{}, ErrInvalidHourRange
	}
	// 同じ24時間ブロック内では開始<終了が必須
	if startHour/24 == endHour/24 && startHour >= endHour {
		return TimeWindow{}, ErrInvalidHourRange
	}
	// 日跨ぎエンコード（開始>=終了）は開始が24時未満の場合のみ意味を持つ
	if startHour >= endHour && startHour >= 24 {
		return TimeWindow{}, ErrInvalidHourRange
	}
	return TimeWindow{startHour: startHour, endHour: endHour}, nil
}

// StartHour は開始時刻を返す
func (w TimeWindow) StartHour() int {
	return w.startHour
}

// EndHour は終了時刻を返す
func (w TimeWindow) EndHour() int {
	return w.endHour
}

// IsWraparound は深夜0時を跨ぐエンコードかを返す
func (w TimeWindow) IsWraparound() bool {
	return w.startHour >= w.endHour
}

// Duration は時間帯の長さ（時間数）を返す
func (w TimeWindow) Duration() int {
	return HourSpan(w.startHour, w.endHour)
}

// ContainsHour は時刻hが時間帯に含まれるかを返す
func (w TimeWindow) ContainsHour(h int) bool {
	if w.IsWraparound() {
		return h >= w.startHour || h < w.endHour
	}
	return h >= w.startHour && h < w.endHour
}

// Overlaps は2つの時間帯が重なるかを返す
// 24〜29時は翌日0〜5時として正規化した上で時刻集合の交差を判定する
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	hours := w.normalizedHours()
	for h := range other.normalizedHours() {
		if hours[h] {
			return true
		}
	}
	return false
}

// normalizedHours は時間帯が覆う時刻を0〜23に正規化した集合で返す
func (w TimeWindow) normalizedHours() map[int]bool {
	hours := make(map[int]bool, w.Duration())
	for _, h := range HoursInRange(w.startHour, w.endHour) {
		hours[h%24] = true
	}
	return hours
}

// HourSpan は開始・終了時刻の組から時間数を計算する
// 終了<=開始の場合は日跨ぎ（例: 22〜2時 → 4時間）として扱う
func HourSpan(startHour, endHour int) int {
	if endHour > startHour {
		return endHour - startHour
	}
	return (24 - startHour) + endHour%24
}

// HoursInRange は [startHour, endHour) が覆う時刻を拡張時刻表現で列挙する
func HoursInRange(startHour, endHour int) []int {
	span := HourSpan(startHour, endHour)
	hours := make([]int, 0, span)
	for i := 0; i < span; i++ {
		hours = append(hours, startHour+i)
	}
	return hours
}

// timeWindowJSON は永続化用の表現
// 0〜29時のエンコードを境界でもそのまま保持する
type timeWindowJSON struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// MarshalJSON は時間帯をJSONに変換する
func (w TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeWindowJSON{StartHour: w.startHour, EndHour: w.endHour})
}

// UnmarshalJSON はJSONから時間帯を復元する
func (w *TimeWindow) UnmarshalJSON(data []byte) error {
	var raw timeWindowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	window, err := NewTimeWindow(raw.StartHour, raw.EndHour)
	if err != nil {
		return err
	}
	*w = window
	return nil
}
