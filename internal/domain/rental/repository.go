package rental

import "context"

// SettingsRepository は貸出設定リポジトリのインターフェース
type SettingsRepository interface {
	// FindByDeviceType は機種IDから貸出設定を取得する
	FindByDeviceType(ctx context.Context, deviceTypeID string) (*Settings, error)

	// FindAll は貸出設定一覧を取得する
	FindAll(ctx context.Context) ([]*Settings, error)

	// Save は貸出設定を保存する（新規・更新共用）
	Save(ctx context.Context, settings *Settings) error

	// Delete は貸出設定を削除する
	Delete(ctx context.Context, id string) error
}
