package timeslot

import (
	"context"
	"time"
)

// TemplateFilter はテンプレート検索の絞り込み条件。nilのフィールドは無条件
type TemplateFilter struct {
	Type        *TemplateType
	IsActive    *bool
	IsYouthTime *bool
}

// TemplateRepository はテンプレートリポジトリのインターフェース
type TemplateRepository interface {
	// FindByID はIDからテンプレートを取得する
	FindByID(ctx context.Context, id string) (*TimeSlotTemplate, error)

	// FindAll は条件に一致するテンプレート一覧を取得する
	FindAll(ctx context.Context, filter TemplateFilter) ([]*TimeSlotTemplate, error)

	// FindByName は名前からテンプレートを取得する
	FindByName(ctx context.Context, name string) (*TimeSlotTemplate, error)

	// FindConflicting は指定時間帯・種別と重複しうる有効テンプレートを取得する
	// excludeIDが空でない場合は該当テンプレートを除外する
	FindConflicting(ctx context.Context, startHour, endHour int, templateType TemplateType, excludeID string) ([]*TimeSlotTemplate, error)

	// FindByPriority は優先度の降順でテンプレートを取得する
	FindByPriority(ctx context.Context, templateType *TemplateType) ([]*TimeSlotTemplate, error)

	// Save はテンプレートを保存する（新規・更新共用）
	Save(ctx context.Context, template *TimeSlotTemplate) error

	// Delete はテンプレートを削除する
	Delete(ctx context.Context, id string) error
}

// ScheduleDateRangeFilter は日付範囲でのスケジュール検索条件
type ScheduleDateRangeFilter struct {
	From         time.Time
	To           time.Time
	DeviceTypeID string
}

// ScheduleRepository はスケジュールリポジトリのインターフェース
type ScheduleRepository interface {
	// FindByID はIDからスケジュールを取得する
	FindByID(ctx context.Context, id string) (*TimeSlotSchedule, error)

	// FindByDateAndDeviceType は日付と機種の組からスケジュールを取得する
	FindByDateAndDeviceType(ctx context.Context, date time.Time, deviceTypeID string) (*TimeSlotSchedule, error)

	// FindByDateRange は日付範囲に含まれるスケジュール一覧を取得する
	FindByDateRange(ctx context.Context, filter ScheduleDateRangeFilter) ([]*TimeSlotSchedule, error)

	// FindByTemplateID は指定テンプレートを参照するスケジュール一覧を取得する
	FindByTemplateID(ctx context.Context, templateID string) ([]*TimeSlotSchedule, error)

	// Save はスケジュールを保存する（新規・更新共用）
	Save(ctx context.Context, schedule *TimeSlotSchedule) error

	// Delete はスケジュールを削除する
	Delete(ctx context.Context, id string) error

	// DeleteBefore は指定日より前のスケジュールを一括削除し、削除件数を返す
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
