package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SlotCache は日付・機種ごとの利用可能テンプレートをキャッシュする
type SlotCache struct {
	client *redis.Client
}

// NewSlotCache は新しいSlotCacheインスタンスを作成する
func NewSlotCache(client *redis.Client) *SlotCache {
	return &SlotCache{client: client}
}

// GetAvailableSlots はキャッシュからテンプレート一覧を取得する
func (c *SlotCache) GetAvailableSlots(ctx context.Context, date time.Time, deviceTypeID string) ([]*timeslot.TimeSlotTemplate, error) {
	key := c.slotKey(date, deviceTypeID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var templates []*timeslot.TimeSlotTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return templates, nil
}

// SetAvailableSlots はテンプレート一覧をキャッシュに保存する
func (c *SlotCache) SetAvailableSlots(ctx context.Context, date time.Time, deviceTypeID string, templates []*timeslot.TimeSlotTemplate, ttl time.Duration) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("キャッシュの変換に失敗: %w", err)
	}
	key := c.slotKey(date, deviceTypeID)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は指定日・機種のキャッシュを無効化する
func (c *SlotCache) Invalidate(ctx context.Context, date time.Time, deviceTypeID string) error {
	key := c.slotKey(date, deviceTypeID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SlotCache) slotKey(date time.Time, deviceTypeID string) string {
	return fmt.Sprintf("slots:available:%s:%s", deviceTypeID, date.Format("2006-01-02"))
}
