package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/timeslot"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses は台数集計の対象となる状態
var ActiveStatuses = []Status{StatusPending, StatusApproved}

// Reservation は筐体レンタルの予約を表すエンティティ
// 料金は作成時点の見積りをスナップショットとして保持する
type Reservation struct {
	ID             string
	UserID         string
	DeviceTypeID   string
	Date           time.Time
	StartHour      int
	EndHour        int
	Units          int
	PlayerCount    int
	PlayMode       string
	TotalPrice     int
	Status         Status
	IdempotencyKey string
	StaffNote      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReservationInput は予約作成時のプロパティ
type NewReservationInput struct {
	UserID         string
	DeviceTypeID   string
	Date           time.Time
	StartHour      int
	EndHour        int
	Units          int
	PlayerCount    int
	PlayMode       string
	TotalPrice     int
	IdempotencyKey string
}

// NewReservation は新しい予約を作成する
func NewReservation(input NewReservationInput) (*Reservation, error) {
	now := time.Now()
	r := &Reservation{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		DeviceTypeID:   input.DeviceTypeID,
		Date:           input.Date,
		StartHour:      input.StartHour,
		EndHour:        input.EndHour,
		Units:          input.Units,
		PlayerCount:    input.PlayerCount,
		PlayMode:       input.PlayMode,
		TotalPrice:     input.TotalPrice,
		Status:         StatusPending,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if r.DeviceTypeID == "" {
		return ErrDeviceTypeRequired
	}
	if r.IdempotencyKey == "" {
		return ErrIdempotencyKeyRequired
	}
	if _, err := timeslot.NewTimeWindow(r.StartHour, r.EndHour); err != nil {
		return ErrInvalidHourRange
	}
	if r.Units < 1 {
		return ErrInvalidUnits
	}
	if r.PlayerCount < 1 {
		return ErrInvalidPlayerCount
	}
	if r.TotalPrice < 0 {
		return ErrInvalidTotalPrice
	}
	return nil
}

// IsPending は承認待ちかを返す
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Duration は予約時間数を返す
func (r *Reservation) Duration() int {
	return timeslot.HourSpan(r.StartHour, r.EndHour)
}

// Approve はスタッフが予約を承認する
func (r *Reservation) Approve() error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	r.Status = StatusApproved
	r.UpdatedAt = time.Now()
	return nil
}

// Reject はスタッフが予約を却下する
func (r *Reservation) Reject(note string) error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	r.Status = StatusRejected
	r.StaffNote = note
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel は予約をキャンセルする
func (r *Reservation) Cancel() error {
	switch r.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusRejected, StatusCompleted:
		return ErrAlreadyFinalized
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// Complete は貸出終了後に予約を完了にする
func (r *Reservation) Complete() error {
	if r.Status != StatusApproved {
		return ErrNotApproved
	}
	r.Status = StatusCompleted
	r.UpdatedAt = time.Now()
	return nil
}
