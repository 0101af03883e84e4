package device

import (
	"time"

	"github.com/google/uuid"
)

// Status は筐体の状態を表す
type Status string

const (
	StatusAvailable   Status = "available"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

// Device は店舗に設置された筐体を表すエンティティ
type Device struct {
	ID           string
	DeviceTypeID string
	Name         string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDevice は新しい筐体を登録する
func NewDevice(deviceTypeID, name string) (*Device, error) {
	d := &Device{
		ID:           uuid.New().String(),
		DeviceTypeID: deviceTypeID,
		Name:         name,
		Status:       StatusAvailable,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate は筐体の検証を行う
func (d *Device) Validate() error {
	if d.DeviceTypeID == "" {
		return ErrDeviceTypeRequired
	}
	if d.Name == "" {
		return ErrDeviceNameRequired
	}
	return nil
}

// IsRentable は貸出に回せる状態かを返す
func (d *Device) IsRentable() bool {
	return d.Status == StatusAvailable
}

// SetStatus は状態を変更した新しいインスタンスを返す
func (d *Device) SetStatus(status Status) *Device {
	copied := *d
	copied.Status = status
	copied.UpdatedAt = time.Now()
	return &copied
}
