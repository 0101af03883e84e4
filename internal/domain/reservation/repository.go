package reservation

import (
	"context"
	"time"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIdempotencyKey は冪等性キーから予約を取得する
	GetByIdempotencyKey(ctx context.Context, key string) (*Reservation, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// FindByTimeSlot は指定日・機種・時間帯に重なる予約を取得する
	FindByTimeSlot(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int, statuses []Status) ([]*Reservation, error)

	// CountUnitsByTimeSlot は指定日・機種・時間帯で貸出中の台数を集計する
	CountUnitsByTimeSlot(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int, statuses []Status) (int, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, r *Reservation) error
}
