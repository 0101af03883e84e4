package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

type templateRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	Type          string    `db:"type"`
	StartHour     int       `db:"start_hour"`
	EndHour       int       `db:"end_hour"`
	CreditOptions []byte    `db:"credit_options"`
	Enable2P      bool      `db:"enable_2p"`
	Price2PExtra  int       `db:"price_2p_extra"`
	IsYouthTime   bool      `db:"is_youth_time"`
	Priority      int       `db:"priority"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *templateRow) toEntity() (*timeslot.TimeSlotTemplate, error) {
	window, err := timeslot.NewTimeWindow(r.StartHour, r.EndHour)
	if err != nil {
		return nil, fmt.Errorf("時間帯の復元に失敗: %w", err)
	}
	var options []timeslot.CreditOption
	if len(r.CreditOptions) > 0 {
		if err := json.Unmarshal(r.CreditOptions, &options); err != nil {
			return nil, fmt.Errorf("クレジット設定の復元に失敗: %w", err)
		}
	}
	return &timeslot.TimeSlotTemplate{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Type:          timeslot.TemplateType(r.Type),
		Window:        window,
		CreditOptions: options,
		Enable2P:      r.Enable2P,
		Price2PExtra:  r.Price2PExtra,
		IsYouthTime:   r.IsYouthTime,
		Priority:      r.Priority,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

const templateColumns = `id, name, description, type, start_hour, end_hour, credit_options, enable_2p, price_2p_extra, is_youth_time, priority, is_active, created_at, updated_at`

type TemplateRepository struct{ db *sqlx.DB }

func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*timeslot.TimeSlotTemplate, error) {
	var row templateRow
	query := `SELECT ` + templateColumns + ` FROM time_slot_templates WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeslot.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("テンプレート取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *TemplateRepository) FindByName(ctx context.Context, name string) (*timeslot.TimeSlotTemplate, error) {
	var row templateRow
	query := `SELECT ` + templateColumns + ` FROM time_slot_templates WHERE name = $1`
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeslot.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("テンプレート取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *TemplateRepository) FindAll(ctx context.Context, filter timeslot.TemplateFilter) ([]*timeslot.TimeSlotTemplate, error) {
	conditions := []string{}
	args := []interface{}{}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.IsYouthTime != nil {
		args = append(args, *filter.IsYouthTime)
		conditions = append(conditions, fmt.Sprintf("is_youth_time = $%d", len(args)))
	}

	query := `SELECT ` + templateColumns + ` FROM time_slot_templates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_hour, name"

	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("テンプレート一覧取得に失敗: %w", err)
	}
	return toTemplates(rows)
}

func (r *TemplateRepository) FindConflicting(ctx context.Context, startHour, endHour int, templateType timeslot.TemplateType, excludeID string) ([]*timeslot.TimeSlotTemplate, error) {
	// 時間帯の重なりはドメイン側で判定するため、ここでは同種別の有効テンプレートを返す
	query := `SELECT ` + templateColumns + ` FROM time_slot_templates WHERE type = $1 AND is_active = TRUE AND id <> $2`
	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, string(templateType), excludeID); err != nil {
		return nil, fmt.Errorf("重複候補テンプレート取得に失敗: %w", err)
	}
	return toTemplates(rows)
}

func (r *TemplateRepository) FindByPriority(ctx context.Context, templateType *timeslot.TemplateType) ([]*timeslot.TimeSlotTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM time_slot_templates`
	args := []interface{}{}
	if templateType != nil {
		query += ` WHERE type = $1`
		args = append(args, string(*templateType))
	}
	query += ` ORDER BY priority DESC, name`
	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("優先度順テンプレート取得に失敗: %w", err)
	}
	return toTemplates(rows)
}

func (r *TemplateRepository) Save(ctx context.Context, template *timeslot.TimeSlotTemplate) error {
	options, err := json.Marshal(template.CreditOptions)
	if err != nil {
		return fmt.Errorf("クレジット設定の変換に失敗: %w", err)
	}
	query := `
		INSERT INTO time_slot_templates (id, name, description, type, start_hour, end_hour, credit_options, enable_2p, price_2p_extra, is_youth_time, priority, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			start_hour = EXCLUDED.start_hour,
			end_hour = EXCLUDED.end_hour,
			credit_options = EXCLUDED.credit_options,
			enable_2p = EXCLUDED.enable_2p,
			price_2p_extra = EXCLUDED.price_2p_extra,
			is_youth_time = EXCLUDED.is_youth_time,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		template.ID, template.Name, template.Description, string(template.Type),
		template.Window.StartHour(), template.Window.EndHour(), options,
		template.Enable2P, template.Price2PExtra, template.IsYouthTime,
		template.Priority, template.IsActive, template.CreatedAt, template.UpdatedAt,
	); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", timeslot.ErrDuplicateName, template.Name)
		}
		return fmt.Errorf("テンプレート保存に失敗: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slot_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("テンプレート削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return timeslot.ErrTemplateNotFound
	}
	return nil
}

func toTemplates(rows []templateRow) ([]*timeslot.TimeSlotTemplate, error) {
	templates := make([]*timeslot.TimeSlotTemplate, len(rows))
	for i := range rows {
		t, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		templates[i] = t
	}
	return templates, nil
}

var _ timeslot.TemplateRepository = (*TemplateRepository)(nil)
