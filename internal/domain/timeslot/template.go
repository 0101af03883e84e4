package timeslot

import (
	"time"

	"github.com/google/uuid"
)

// TemplateType はテンプレートの種別を表す
type TemplateType string

const (
	TemplateEarly     TemplateType = "early"
	TemplateOvernight TemplateType = "overnight"
)

// TimeSlotTemplate は管理者が定義する再利用可能な時間帯設定
// 変更は必ず新しいインスタンスを返す（既存インスタンスは不変）
type TimeSlotTemplate struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Type          TemplateType   `json:"type"`
	Window        TimeWindow     `json:"window"`
	CreditOptions []CreditOption `json:"credit_options"`
	Enable2P      bool           `json:"enable_2p"`
	Price2PExtra  int            `json:"price_2p_extra"`
	IsYouthTime   bool           `json:"is_youth_time"`
	Priority      int            `json:"priority"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TemplateProps はテンプレート作成時のプロパティ
type TemplateProps struct {
	Name          string
	Description   string
	Type          TemplateType
	Window        TimeWindow
	CreditOptions []CreditOption
	Enable2P      bool
	Price2PExtra  int
	IsYouthTime   bool
	Priority      int
	IsActive      bool
}

// NewTimeSlotTemplate は新しいテンプレートを作成する
func NewTimeSlotTemplate(props TemplateProps) (*TimeSlotTemplate, error) {
	now := time.Now()
	t := &TimeSlotTemplate{
		ID:            uuid.New().String(),
		Name:          props.Name,
		Description:   props.Description,
		Type:          props.Type,
		Window:        props.Window,
		CreditOptions: props.CreditOptions,
		Enable2P:      props.Enable2P,
		Price2PExtra:  props.Price2PExtra,
		IsYouthTime:   props.IsYouthTime,
		Priority:      props.Priority,
		IsActive:      props.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate はテンプレートの検証を行う
func (t *TimeSlotTemplate) Validate() error {
	if t.Name == "" {
		return ErrTemplateNameRequired
	}
	if t.Type != TemplateEarly && t.Type != TemplateOvernight {
		return ErrInvalidTemplateType
	}
	if len(t.CreditOptions) == 0 {
		return ErrNoCreditOptions
	}
	for _, opt := range t.CreditOptions {
		if err := opt.Validate(); err != nil {
			return err
		}
	}
	if t.Enable2P && t.Price2PExtra < 0 {
		return Err2PPriceRequired
	}
	if t.IsYouthTime {
		// ユース時間帯は同一日内の9〜22時に限る（日跨ぎ不可）
		start := t.Window.StartHour() % 24
		end := t.Window.EndHour() % 24
		if t.Window.IsWraparound() || start < 9 || end > 22 || start >= end {
			return ErrInvalidYouthWindow
		}
	}
	return nil
}

// GetPrice は指定クレジット種別・時間数の料金を返す
// 該当する設定がない場合はfalseを返す
func (t *TimeSlotTemplate) GetPrice(creditType CreditType, hours int, is2P bool) (int, bool) {
	for _, opt := range t.CreditOptions {
		if opt.Type != creditType {
			continue
		}
		price, ok := opt.PriceFor(hours)
		if !ok {
			return 0, false
		}
		if is2P && t.Enable2P {
			price += t.Price2PExtra
		}
		return price, true
	}
	return 0, false
}

// ConflictsWith は他のテンプレートと衝突するかを返す
// 同一ID・異種別・いずれかが無効の場合は衝突しない
func (t *TimeSlotTemplate) ConflictsWith(other *TimeSlotTemplate) bool {
	if other == nil || t.ID == other.ID {
		return false
	}
	if t.Type != other.Type {
		return false
	}
	if !t.IsActive || !other.IsActive {
		return false
	}
	return t.Window.Overlaps(other.Window)
}

// TemplateUpdates はテンプレート更新時の差分。nilのフィールドは変更しない
type TemplateUpdates struct {
	Name          *string
	Description   *string
	Type          *TemplateType
	Window        *TimeWindow
	CreditOptions []CreditOption
	Enable2P      *bool
	Price2PExtra  *int
	IsYouthTime   *bool
	Priority      *int
	IsActive      *bool
}

// Update は差分を適用した新しいテンプレートを返す
// マージ後のプロパティ全体を再検証する
func (t *TimeSlotTemplate) Update(updates TemplateUpdates) (*TimeSlotTemplate, error) {
	updated := t.clone()
	if updates.Name != nil {
		updated.Name = *updates.Name
	}
	if updates.Description != nil {
		updated.Description = *updates.Description
	}
	if updates.Type != nil {
		updated.Type = *updates.Type
	}
	if updates.Window != nil {
		updated.Window = *updates.Window
	}
	if updates.CreditOptions != nil {
		updated.CreditOptions = updates.CreditOptions
	}
	if updates.Enable2P != nil {
		updated.Enable2P = *updates.Enable2P
	}
	if updates.Price2PExtra != nil {
		updated.Price2PExtra = *updates.Price2PExtra
	}
	if updates.IsYouthTime != nil {
		updated.IsYouthTime = *updates.IsYouthTime
	}
	if updates.Priority != nil {
		updated.Priority = *updates.Priority
	}
	if updates.IsActive != nil {
		updated.IsActive = *updates.IsActive
	}
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Activate はテンプレートを有効化した新しいインスタンスを返す
func (t *TimeSlotTemplate) Activate() *TimeSlotTemplate {
	updated := t.clone()
	updated.IsActive = true
	updated.UpdatedAt = time.Now()
	return updated
}

// Deactivate はテンプレートを無効化した新しいインスタンスを返す
func (t *TimeSlotTemplate) Deactivate() *TimeSlotTemplate {
	updated := t.clone()
	updated.IsActive = false
	updated.UpdatedAt = time.Now()
	return updated
}

// clone はテンプレートの複製を作成する
func (t *TimeSlotTemplate) clone() *TimeSlotTemplate {
	copied := *t
	copied.CreditOptions = make([]CreditOption, len(t.CreditOptions))
	copy(copied.CreditOptions, t.CreditOptions)
	return &copied
}
