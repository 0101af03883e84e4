package device

import "context"

// Repository は筐体リポジトリのインターフェース
type Repository interface {
	// FindByID はIDから筐体を取得する
	FindByID(ctx context.Context, id string) (*Device, error)

	// FindByType は機種IDから筐体一覧を取得する
	FindByType(ctx context.Context, deviceTypeID string) ([]*Device, error)

	// CountByType は機種ごとの貸出可能な筐体数を返す
	CountByType(ctx context.Context, deviceTypeID string) (int, error)

	// Save は筐体を保存する（新規・更新共用）
	Save(ctx context.Context, d *Device) error
}
