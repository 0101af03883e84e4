package pricing

import "errors"

// 料金ルールのエラー定義
var (
	ErrRuleNameRequired       = errors.New("料金ルール名は必須です")
	ErrInvalidRuleType        = errors.New("料金ルール種別が不正です")
	ErrInvalidBasePrice       = errors.New("基本料金は0以上である必要があります")
	ErrInvalidPerPlayerPrice  = errors.New("人数追加料金は0以上である必要があります")
	ErrInvalidDayOfWeek       = errors.New("曜日は0〜6の範囲で指定してください")
	ErrInvalidHourCondition   = errors.New("時間帯条件が不正です")
	ErrInvalidPriceRange      = errors.New("最低料金は最高料金以下である必要があります")
	ErrSessionMinutesRequired = errors.New("セッション料金には1以上のセッション分数が必要です")
	ErrRuleNotFound           = errors.New("料金ルールが見つかりません")
)
