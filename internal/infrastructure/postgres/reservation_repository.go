package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/reservation"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/transaction"
)

type reservationRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	DeviceTypeID   string    `db:"device_type_id"`
	Date           time.Time `db:"date"`
	StartHour      int       `db:"start_hour"`
	EndHour        int       `db:"end_hour"`
	Units          int       `db:"units"`
	PlayerCount    int       `db:"player_count"`
	PlayMode       string    `db:"play_mode"`
	TotalPrice     int       `db:"total_price"`
	Status         string    `db:"status"`
	IdempotencyKey string    `db:"idempotency_key"`
	StaffNote      string    `db:"staff_note"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:             r.ID,
		UserID:         r.UserID,
		DeviceTypeID:   r.DeviceTypeID,
		Date:           r.Date,
		StartHour:      r.StartHour,
		EndHour:        r.EndHour,
		Units:          r.Units,
		PlayerCount:    r.PlayerCount,
		PlayMode:       r.PlayMode,
		TotalPrice:     r.TotalPrice,
		Status:         reservation.Status(r.Status),
		IdempotencyKey: r.IdempotencyKey,
		StaffNote:      r.StaffNote,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

const reservationColumns = `id, user_id, device_type_id, date, start_hour, end_hour, units, player_count, play_mode, total_price, status, idempotency_key, staff_note, created_at, updated_at`

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `
		INSERT INTO reservations (id, user_id, device_type_id, date, start_hour, end_hour, units, player_count, play_mode, total_price, status, idempotency_key, staff_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := sqlxTx.ExecContext(ctx, query,
		res.ID, res.UserID, res.DeviceTypeID, dateOnly(res.Date),
		res.StartHour, res.EndHour, res.Units, res.PlayerCount, res.PlayMode,
		res.TotalPrice, string(res.Status), res.IdempotencyKey, res.StaffNote,
		res.CreatedAt, res.UpdatedAt,
	); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return reservation.ErrIdempotencyKeyConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE idempotency_key = $1`
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *ReservationRepository) FindByTimeSlot(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int, statuses []reservation.Status) ([]*reservation.Reservation, error) {
	rows, err := r.findByDateAndStatus(ctx, date, deviceTypeID, statuses)
	if err != nil {
		return nil, err
	}
	target, err := timeslot.NewTimeWindow(startHour, endHour)
	if err != nil {
		return nil, fmt.Errorf("時間帯の指定が不正です: %w", err)
	}
	result := make([]*reservation.Reservation, 0, len(rows))
	for i := range rows {
		// 日跨ぎエンコードを考慮した重なり判定はドメイン側で行う
		window, err := timeslot.NewTimeWindow(rows[i].StartHour, rows[i].EndHour)
		if err != nil {
			return nil, fmt.Errorf("予約時間帯の復元に失敗: %w", err)
		}
		if window.Overlaps(target) {
			result = append(result, rows[i].toEntity())
		}
	}
	return result, nil
}

func (r *ReservationRepository) CountUnitsByTimeSlot(ctx context.Context, date time.Time, deviceTypeID string, startHour, endHour int, statuses []reservation.Status) (int, error) {
	overlapping, err := r.FindByTimeSlot(ctx, date, deviceTypeID, startHour, endHour, statuses)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, res := range overlapping {
		total += res.Units
	}
	return total, nil
}

func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `UPDATE reservations SET status = $1, staff_note = $2, updated_at = $3 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(res.Status), res.StaffNote, res.UpdatedAt, res.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) findByDateAndStatus(ctx context.Context, date time.Time, deviceTypeID string, statuses []reservation.Status) ([]reservationRow, error) {
	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE date = $1 AND device_type_id = $2 AND status = ANY($3)`
	if err := r.db.SelectContext(ctx, &rows, query, dateOnly(date), deviceTypeID, pq.Array(statusValues)); err != nil {
		return nil, fmt.Errorf("予約検索に失敗: %w", err)
	}
	return rows, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
