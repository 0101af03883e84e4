package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/logger"
)

// ScheduleCleanupService は過去スケジュールを削除するインターフェース
type ScheduleCleanupService interface {
	CleanupPastSchedules(ctx context.Context, cutoff time.Time) (int, error)
}

// ScheduleCleaner は保持期間を過ぎたスケジュールを定期削除するワーカー
type ScheduleCleaner struct {
	timeSlotService ScheduleCleanupService
	interval        time.Duration
	retention       time.Duration
	stopCh          chan struct{}
	doneCh          chan struct{}
}

// NewScheduleCleaner は新しいクリーナーを作成
func NewScheduleCleaner(
	ts ScheduleCleanupService,
	interval time.Duration,
	retention time.Duration,
) *ScheduleCleaner {
	return &ScheduleCleaner{
		timeSlotService: ts,
		interval:        interval,
		retention:       retention,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *ScheduleCleaner) Start(ctx context.Context) {
	logger.Info("過去スケジュールクリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("retention", c.retention),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("過去スケジュールクリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("過去スケジュールクリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *ScheduleCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は保持期間を過ぎたスケジュールを削除
func (c *ScheduleCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("過去スケジュールのクリーンアップ開始")

	cutoff := time.Now().Add(-c.retention)
	count, err := c.timeSlotService.CleanupPastSchedules(ctx, cutoff)
	if err != nil {
		log.Error("過去スケジュールのクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("過去スケジュールを削除", zap.Int("count", count), zap.Time("cutoff", cutoff))
	} else {
		log.Debug("削除対象のスケジュールなし")
	}
}
