package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/pricing"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/rental"
)

type rentalSettingsRow struct {
	ID           string    `db:"id"`
	DeviceTypeID string    `db:"device_type_id"`
	TimeSlots    []byte    `db:"time_slots"`
	PricingRules []byte    `db:"pricing_rules"`
	Availability []byte    `db:"availability"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *rentalSettingsRow) toEntity() (*rental.Settings, error) {
	var slots []rental.TimeSlot
	if err := json.Unmarshal(r.TimeSlots, &slots); err != nil {
		return nil, fmt.Errorf("貸出時間帯の復元に失敗: %w", err)
	}
	var rules []*pricing.Rule
	if err := json.Unmarshal(r.PricingRules, &rules); err != nil {
		return nil, fmt.Errorf("料金ルールの復元に失敗: %w", err)
	}
	var availability rental.Availability
	if err := json.Unmarshal(r.Availability, &availability); err != nil {
		return nil, fmt.Errorf("台数設定の復元に失敗: %w", err)
	}
	return &rental.Settings{
		ID:           r.ID,
		DeviceTypeID: r.DeviceTypeID,
		TimeSlots:    slots,
		PricingRules: rules,
		Availability: availability,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

const rentalSettingsColumns = `id, device_type_id, time_slots, pricing_rules, availability, is_active, created_at, updated_at`

type RentalSettingsRepository struct{ db *sqlx.DB }

func NewRentalSettingsRepository(db *sqlx.DB) *RentalSettingsRepository {
	return &RentalSettingsRepository{db: db}
}

func (r *RentalSettingsRepository) FindByDeviceType(ctx context.Context, deviceTypeID string) (*rental.Settings, error) {
	var row rentalSettingsRow
	query := `SELECT ` + rentalSettingsColumns + ` FROM rental_settings WHERE device_type_id = $1`
	if err := r.db.GetContext(ctx, &row, query, deviceTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rental.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("貸出設定取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *RentalSettingsRepository) FindAll(ctx context.Context) ([]*rental.Settings, error) {
	var rows []rentalSettingsRow
	query := `SELECT ` + rentalSettingsColumns + ` FROM rental_settings ORDER BY device_type_id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("貸出設定一覧取得に失敗: %w", err)
	}
	result := make([]*rental.Settings, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		result[i] = s
	}
	return result, nil
}

func (r *RentalSettingsRepository) Save(ctx context.Context, settings *rental.Settings) error {
	slots, err := json.Marshal(settings.TimeSlots)
	if err != nil {
		return fmt.Errorf("貸出時間帯の変換に失敗: %w", err)
	}
	rules, err := json.Marshal(settings.PricingRules)
	if err != nil {
		return fmt.Errorf("料金ルールの変換に失敗: %w", err)
	}
	availability, err := json.Marshal(settings.Availability)
	if err != nil {
		return fmt.Errorf("台数設定の変換に失敗: %w", err)
	}
	query := `
		INSERT INTO rental_settings (id, device_type_id, time_slots, pricing_rules, availability, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			time_slots = EXCLUDED.time_slots,
			pricing_rules = EXCLUDED.pricing_rules,
			availability = EXCLUDED.availability,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		settings.ID, settings.DeviceTypeID, slots, rules, availability,
		settings.IsActive, settings.CreatedAt, settings.UpdatedAt,
	); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", rental.ErrSettingsAlreadyExists, settings.DeviceTypeID)
		}
		return fmt.Errorf("貸出設定保存に失敗: %w", err)
	}
	return nil
}

func (r *RentalSettingsRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rental_settings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("貸出設定削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return rental.ErrSettingsNotFound
	}
	return nil
}

var _ rental.SettingsRepository = (*RentalSettingsRepository)(nil)
