package reservation

import "errors"

// 予約ドメインのエラー定義
var (
	ErrReservationNotFound    = errors.New("予約が見つかりません")
	ErrUserIDRequired         = errors.New("ユーザーIDは必須です")
	ErrDeviceTypeRequired     = errors.New("機種IDは必須です")
	ErrIdempotencyKeyRequired = errors.New("冪等性キーは必須です")
	ErrInvalidHourRange       = errors.New("予約時間帯の指定が不正です")
	ErrInvalidUnits           = errors.New("貸出台数は1以上である必要があります")
	ErrInvalidPlayerCount     = errors.New("プレイ人数は1以上である必要があります")
	ErrInvalidTotalPrice      = errors.New("料金は0以上である必要があります")
	ErrReservationNotPending  = errors.New("承認待ちの予約ではありません")
	ErrAlreadyCancelled       = errors.New("予約は既にキャンセルされています")
	ErrAlreadyFinalized       = errors.New("確定済みの予約は変更できません")
	ErrNotApproved            = errors.New("承認済みの予約ではありません")
	ErrUnitsNotAvailable      = errors.New("指定台数を貸し出せる空きがありません")
	ErrIdempotencyKeyConflict = errors.New("同じ冪等性キーの予約が既に存在します")
)
