package timeslot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeSlotSchedule は特定日・特定機種に適用するテンプレートの集合
// 変更は必ず新しいインスタンスを返す
type TimeSlotSchedule struct {
	ID           string              `json:"id"`
	Date         time.Time           `json:"date"`
	DeviceTypeID string              `json:"device_type_id"`
	Templates    []*TimeSlotTemplate `json:"templates"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewTimeSlotSchedule は新しいスケジュールを作成する
// 過去日付・テンプレート空・有効テンプレートの時間帯重複を拒否する
func NewTimeSlotSchedule(date time.Time, deviceTypeID string, templates []*TimeSlotTemplate) (*TimeSlotSchedule, error) {
	if deviceTypeID == "" {
		return nil, ErrDeviceTypeRequired
	}
	if len(templates) == 0 {
		return nil, ErrEmptyTemplates
	}
	day := truncateToDate(date)
	if day.Before(truncateToDate(time.Now())) {
		return nil, ErrPastDate
	}
	if err := validateNoOverlap(templates); err != nil {
		return nil, err
	}
	now := time.Now()
	return &TimeSlotSchedule{
		ID:           uuid.New().String(),
		Date:         day,
		DeviceTypeID: deviceTypeID,
		Templates:    copyTemplates(templates),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ActiveTemplates は有効なテンプレートのみを返す
func (s *TimeSlotSchedule) ActiveTemplates() []*TimeSlotTemplate {
	active := make([]*TimeSlotTemplate, 0, len(s.Templates))
	for _, t := range s.Templates {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

// HasTemplate は指定IDのテンプレートを含むかを返す
func (s *TimeSlotSchedule) HasTemplate(templateID string) bool {
	for _, t := range s.Templates {
		if t.ID == templateID {
			return true
		}
	}
	return false
}

// AddTemplate はテンプレートを追加した新しいスケジュールを返す
func (s *TimeSlotSchedule) AddTemplate(template *TimeSlotTemplate) (*TimeSlotSchedule, error) {
	if s.HasTemplate(template.ID) {
		return nil, ErrDuplicateTemplate
	}
	templates := append(copyTemplates(s.Templates), template)
	if err := validateNoOverlap(templates); err != nil {
		return nil, err
	}
	return s.withTemplates(templates), nil
}

// RemoveTemplate はテンプレートを取り除いた新しいスケジュールを返す
// 最後の1つは取り除けない
func (s *TimeSlotSchedule) RemoveTemplate(templateID string) (*TimeSlotSchedule, error) {
	templates := make([]*TimeSlotTemplate, 0, len(s.Templates))
	for _, t := range s.Templates {
		if t.ID != templateID {
			templates = append(templates, t)
		}
	}
	if len(templates) == len(s.Templates) {
		return nil, ErrTemplateNotFound
	}
	if len(templates) == 0 {
		return nil, ErrLastTemplate
	}
	if err := validateNoOverlap(templates); err != nil {
		return nil, err
	}
	return s.withTemplates(templates), nil
}

// ReplaceTemplates はテンプレート一式を差し替えた新しいスケジュールを返す
func (s *TimeSlotSchedule) ReplaceTemplates(templates []*TimeSlotTemplate) (*TimeSlotSchedule, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyTemplates
	}
	if err := validateNoOverlap(templates); err != nil {
		return nil, err
	}
	return s.withTemplates(copyTemplates(templates)), nil
}

func (s *TimeSlotSchedule) withTemplates(templates []*TimeSlotTemplate) *TimeSlotSchedule {
	copied := *s
	copied.Templates = templates
	copied.UpdatedAt = time.Now()
	return &copied
}

// validateNoOverlap は有効テンプレート同士の時間帯重複を検査する
func validateNoOverlap(templates []*TimeSlotTemplate) error {
	for i := 0; i < len(templates); i++ {
		for j := i + 1; j < len(templates); j++ {
			if templates[i].ConflictsWith(templates[j]) {
				return fmt.Errorf("%w: %s / %s", ErrOverlappingTemplates, templates[i].Name, templates[j].Name)
			}
		}
	}
	return nil
}

func copyTemplates(templates []*TimeSlotTemplate) []*TimeSlotTemplate {
	copied := make([]*TimeSlotTemplate, len(templates))
	copy(copied, templates)
	return copied
}

// truncateToDate は時刻を切り捨てて日付のみにする
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
