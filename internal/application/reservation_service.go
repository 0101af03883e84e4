package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/reservation"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/transaction"
	redisinfra "github.com/hohihiho/gameplaza-booking-v2-sub002/internal/infrastructure/redis"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/metrics"
)

const reservationLockTTL = 10 * time.Second

// ReservationService は貸出予約の作成とスタッフによる承認フローを担う
type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	rentalService   *RentalService
	lockManager     *redisinfra.LockManager
}

func NewReservationService(
	tm transaction.Manager,
	rr reservation.Repository,
	rs *RentalService,
	lm *redisinfra.LockManager,
) *ReservationService {
	return &ReservationService{txManager: tm, reservationRepo: rr, rentalService: rs, lockManager: lm}
}

// CreateReservationInput は予約作成の入力
type CreateReservationInput struct {
	UserID         string
	DeviceTypeID   string
	Date           time.Time
	StartHour      int
	EndHour        int
	Units          int
	PlayerCount    int
	PlayMode       string
	IdempotencyKey string
}

// CreateReservation は新しい貸出予約を作成する
// 空き確認と料金見積りを行い、承認待ち状態で永続化する
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	// 冪等性チェック
	existing, err := s.reservationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, reservation.ErrReservationNotFound) {
		return nil, fmt.Errorf("冪等性チェックに失敗: %w", err)
	}

	// 同一機種・同一時間帯の同時予約をロックで直列化する
	if s.lockManager != nil {
		lockKey := fmt.Sprintf("rental:%s:%s:%d-%d", input.DeviceTypeID, input.Date.Format("2006-01-02"), input.StartHour, input.EndHour)
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, reservationLockTTL, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				metrics.RecordReservation("lock_failed")
				return nil, fmt.Errorf("同じ時間帯の予約が処理中です")
			}
			metrics.RecordReservation("error")
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	ok, err := s.rentalService.CheckAvailability(ctx, AvailabilityQuery{
		DeviceTypeID: input.DeviceTypeID,
		Date:         input.Date,
		StartHour:    input.StartHour,
		EndHour:      input.EndHour,
		Units:        input.Units,
	})
	if err != nil {
		metrics.RecordReservation("error")
		return nil, err
	}
	if !ok {
		metrics.RecordReservation("conflict")
		return nil, reservation.ErrUnitsNotAvailable
	}

	price, err := s.rentalService.QuotePrice(ctx, PriceQuery{
		DeviceTypeID: input.DeviceTypeID,
		Date:         input.Date,
		StartHour:    input.StartHour,
		EndHour:      input.EndHour,
		PlayMode:     input.PlayMode,
		PlayerCount:  input.PlayerCount,
	})
	if err != nil {
		metrics.RecordReservation("error")
		return nil, err
	}
	totalPrice := price * input.Units

	res, err := reservation.NewReservation(reservation.NewReservationInput{
		UserID:         input.UserID,
		DeviceTypeID:   input.DeviceTypeID,
		Date:           input.Date,
		StartHour:      input.StartHour,
		EndHour:        input.EndHour,
		Units:          input.Units,
		PlayerCount:    input.PlayerCount,
		PlayMode:       input.PlayMode,
		TotalPrice:     totalPrice,
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		metrics.RecordReservation("error")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		metrics.RecordReservation("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
		metrics.RecordReservation("error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordReservation("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	metrics.RecordReservation("success")
	return res, nil
}

// GetReservation はIDから予約を取得する
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

// GetSlotReservations は指定日・機種・時間帯に重なる有効な予約一覧を取得する
// スタッフの承認キューや当日運用の確認に使う
func (s *ReservationService) GetSlotReservations(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int) ([]*reservation.Reservation, error) {
	return s.reservationRepo.FindByTimeSlot(ctx, date, deviceTypeID, startHour, endHour, reservation.ActiveStatuses)
}

// GetUserReservations はユーザーの予約一覧を取得する
func (s *ReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reservationRepo.GetByUserID(ctx, userID, limit, offset)
}

// ApproveReservation はスタッフが予約を承認する
func (s *ReservationService) ApproveReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.transition(ctx, id, func(r *reservation.Reservation) error {
		return r.Approve()
	})
}

// RejectReservation はスタッフが予約を却下する
func (s *ReservationService) RejectReservation(ctx context.Context, id, note string) (*reservation.Reservation, error) {
	return s.transition(ctx, id, func(r *reservation.Reservation) error {
		return r.Reject(note)
	})
}

// CancelReservation は予約をキャンセルする
func (s *ReservationService) CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.transition(ctx, id, func(r *reservation.Reservation) error {
		return r.Cancel()
	})
}

// CompleteReservation は貸出終了後に予約を完了にする
func (s *ReservationService) CompleteReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.transition(ctx, id, func(r *reservation.Reservation) error {
		return r.Complete()
	})
}

// transition は予約を読み込み、状態遷移を適用してトランザクション内で保存する
func (s *ReservationService) transition(ctx context.Context, id string, fn func(*reservation.Reservation) error) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(res); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.Update(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return res, nil
}
