package timeslot

import "errors"

// 時間帯・テンプレート・スケジュールのエラー定義
var (
	ErrInvalidHourRange     = errors.New("時間帯の指定が不正です（0〜29時、同一日内は開始<終了）")
	ErrTemplateNameRequired = errors.New("テンプレート名は必須です")
	ErrInvalidTemplateType  = errors.New("テンプレート種別はearlyまたはovernightである必要があります")
	ErrNoCreditOptions      = errors.New("クレジットオプションが1つ以上必要です")
	ErrCreditHoursRequired  = errors.New("クレジットオプションには1つ以上の時間数が必要です")
	ErrCreditPriceInvalid   = errors.New("クレジットオプションの全時間数に0以上の料金が必要です")
	ErrFixedCreditsRequired = errors.New("固定クレジットには1以上のクレジット数が必要です")
	Err2PPriceRequired      = errors.New("2人プレイ有効時は0以上の追加料金が必要です")
	ErrInvalidYouthWindow   = errors.New("ユース時間帯は9〜22時の範囲内である必要があります")
	ErrDuplicateName        = errors.New("同名のテンプレートが既に存在します")
	ErrConflictingTemplates = errors.New("既存のテンプレートと時間帯が重複しています")
	ErrOverlappingTemplates = errors.New("同一種別の有効なテンプレート同士で時間帯が重複しています")
	ErrTemplateNotFound     = errors.New("テンプレートが見つかりません")
	ErrDuplicateTemplate    = errors.New("同じIDのテンプレートが既に存在します")
	ErrTemplateInUse        = errors.New("スケジュールから参照されているテンプレートは削除できません")
	ErrEmptyTemplates       = errors.New("スケジュールには1つ以上のテンプレートが必要です")
	ErrLastTemplate         = errors.New("最後のテンプレートは削除できません")
	ErrPastDate             = errors.New("過去の日付にはスケジュールを作成できません")
	ErrScheduleNotFound     = errors.New("スケジュールが見つかりません")
	ErrDeviceTypeRequired   = errors.New("機種IDは必須です")
	ErrInvalidRepeat        = errors.New("繰り返し設定が不正です")
)
