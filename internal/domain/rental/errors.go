package rental

import "errors"

// 貸出設定のエラー定義
var (
	ErrInvalidTotalUnits        = errors.New("総台数は1以上である必要があります")
	ErrInvalidMinUnits          = errors.New("最低空き台数は0以上かつ総台数以下である必要があります")
	ErrInvalidMaxPerReservation = errors.New("1予約あたりの最大台数は1以上かつ総台数以下である必要があります")
	ErrInvalidBufferUnits       = errors.New("バッファ台数は0以上かつ総台数未満である必要があります")
	ErrInvalidDayValue          = errors.New("曜日は-1（毎日）または0〜6で指定してください")
	ErrInvalidSlotType          = errors.New("貸出時間帯の種別が不正です")
	ErrDeviceTypeRequired       = errors.New("機種IDは必須です")
	ErrNoTimeSlots              = errors.New("貸出時間帯が1つ以上必要です")
	ErrNoPricing                = errors.New("料金ルールが1つ以上必要です")
	ErrDuplicateTimeSlot        = errors.New("同一の曜日・時間帯が既に登録されています")
	ErrOverlappingTimeSlot      = errors.New("既存の貸出時間帯と重複しています")
	ErrTimeSlotNotFound         = errors.New("貸出時間帯が見つかりません")
	ErrLastTimeSlot             = errors.New("最後の貸出時間帯は削除できません")
	ErrLastPricingRule          = errors.New("最後の料金ルールは削除できません")
	ErrNoAvailableSlot          = errors.New("指定時間帯に貸出可能な時刻がありません")
	ErrNoPricingMatch           = errors.New("適用可能な料金ルールがありません")
	ErrSettingsNotFound         = errors.New("貸出設定が見つかりません")
	ErrSettingsAlreadyExists    = errors.New("この機種の貸出設定は既に存在します")
)
