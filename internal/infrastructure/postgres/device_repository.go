package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
)

type deviceRow struct {
	ID           string    `db:"id"`
	DeviceTypeID string    `db:"device_type_id"`
	Name         string    `db:"name"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *deviceRow) toEntity() *device.Device {
	return &device.Device{
		ID:           r.ID,
		DeviceTypeID: r.DeviceTypeID,
		Name:         r.Name,
		Status:       device.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type DeviceRepository struct{ db *sqlx.DB }

func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) FindByID(ctx context.Context, id string) (*device.Device, error) {
	var row deviceRow
	query := `SELECT id, device_type_id, name, status, created_at, updated_at FROM devices WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, device.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("筐体取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *DeviceRepository) FindByType(ctx context.Context, deviceTypeID string) ([]*device.Device, error) {
	var rows []deviceRow
	query := `SELECT id, device_type_id, name, status, created_at, updated_at FROM devices WHERE device_type_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &rows, query, deviceTypeID); err != nil {
		return nil, fmt.Errorf("筐体一覧取得に失敗: %w", err)
	}
	result := make([]*device.Device, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *DeviceRepository) CountByType(ctx context.Context, deviceTypeID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM devices WHERE device_type_id = $1 AND status = 'available'`
	if err := r.db.GetContext(ctx, &count, query, deviceTypeID); err != nil {
		return 0, fmt.Errorf("筐体台数集計に失敗: %w", err)
	}
	return count, nil
}

func (r *DeviceRepository) Save(ctx context.Context, d *device.Device) error {
	query := `
		INSERT INTO devices (id, device_type_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.DeviceTypeID, d.Name, string(d.Status), d.CreatedAt, d.UpdatedAt); err != nil {
		return fmt.Errorf("筐体保存に失敗: %w", err)
	}
	return nil
}

var _ device.Repository = (*DeviceRepository)(nil)
