package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

type scheduleRow struct {
	ID           string    `db:"id"`
	Date         time.Time `db:"date"`
	DeviceTypeID string    `db:"device_type_id"`
	Templates    []byte    `db:"templates"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *scheduleRow) toEntity() (*timeslot.TimeSlotSchedule, error) {
	// スケジュールは承認時点のテンプレートをスナップショットとして保持する
	var templates []*timeslot.TimeSlotTemplate
	if err := json.Unmarshal(r.Templates, &templates); err != nil {
		return nil, fmt.Errorf("テンプレートスナップショットの復元に失敗: %w", err)
	}
	return &timeslot.TimeSlotSchedule{
		ID:           r.ID,
		Date:         r.Date,
		DeviceTypeID: r.DeviceTypeID,
		Templates:    templates,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

const scheduleColumns = `id, date, device_type_id, templates, created_at, updated_at`

type ScheduleRepository struct{ db *sqlx.DB }

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*timeslot.TimeSlotSchedule, error) {
	var row scheduleRow
	query := `SELECT ` + scheduleColumns + ` FROM time_slot_schedules WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeslot.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("スケジュール取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *ScheduleRepository) FindByDateAndDeviceType(ctx context.Context, date time.Time, deviceTypeID string) (*timeslot.TimeSlotSchedule, error) {
	var row scheduleRow
	query := `SELECT ` + scheduleColumns + ` FROM time_slot_schedules WHERE date = $1 AND device_type_id = $2`
	if err := r.db.GetContext(ctx, &row, query, dateOnly(date), deviceTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeslot.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("スケジュール取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *ScheduleRepository) FindByDateRange(ctx context.Context, filter timeslot.ScheduleDateRangeFilter) ([]*timeslot.TimeSlotSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM time_slot_schedules WHERE date >= $1 AND date <= $2`
	args := []interface{}{dateOnly(filter.From), dateOnly(filter.To)}
	if filter.DeviceTypeID != "" {
		query += ` AND device_type_id = $3`
		args = append(args, filter.DeviceTypeID)
	}
	query += ` ORDER BY date, device_type_id`

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("スケジュール一覧取得に失敗: %w", err)
	}
	return toSchedules(rows)
}

func (r *ScheduleRepository) FindByTemplateID(ctx context.Context, templateID string) ([]*timeslot.TimeSlotSchedule, error) {
	// スナップショットJSONBに対する包含検索
	query := `SELECT ` + scheduleColumns + ` FROM time_slot_schedules WHERE templates @> $1 ORDER BY date`
	match, err := json.Marshal([]map[string]string{{"id": templateID}})
	if err != nil {
		return nil, fmt.Errorf("検索条件の変換に失敗: %w", err)
	}
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, match); err != nil {
		return nil, fmt.Errorf("テンプレート参照スケジュール取得に失敗: %w", err)
	}
	return toSchedules(rows)
}

func (r *ScheduleRepository) Save(ctx context.Context, schedule *timeslot.TimeSlotSchedule) error {
	templates, err := json.Marshal(schedule.Templates)
	if err != nil {
		return fmt.Errorf("テンプレートスナップショットの変換に失敗: %w", err)
	}
	query := `
		INSERT INTO time_slot_schedules (id, date, device_type_id, templates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, device_type_id) DO UPDATE SET
			templates = EXCLUDED.templates,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		schedule.ID, dateOnly(schedule.Date), schedule.DeviceTypeID,
		templates, schedule.CreatedAt, schedule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("スケジュール保存に失敗: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slot_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("スケジュール削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return timeslot.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slot_schedules WHERE date < $1`, dateOnly(cutoff))
	if err != nil {
		return 0, fmt.Errorf("過去スケジュール削除に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数取得に失敗: %w", err)
	}
	return int(rows), nil
}

func toSchedules(rows []scheduleRow) ([]*timeslot.TimeSlotSchedule, error) {
	schedules := make([]*timeslot.TimeSlotSchedule, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		schedules[i] = s
	}
	return schedules, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var _ timeslot.ScheduleRepository = (*ScheduleRepository)(nil)
