package device

import "errors"

// 筐体ドメインのエラー定義
var (
	ErrDeviceNotFound      = errors.New("筐体が見つかりません")
	ErrDeviceTypeRequired  = errors.New("機種IDは必須です")
	ErrDeviceNameRequired  = errors.New("筐体名は必須です")
	ErrNoDevicesRegistered = errors.New("貸出可能な筐体が登録されていません")
)
