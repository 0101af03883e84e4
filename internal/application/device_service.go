package application

import (
	"context"
	"fmt"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/domain/device"
)

// DeviceService は店舗に設置された筐体の登録と照会を担う
type DeviceService struct {
	deviceRepo device.Repository
}

func NewDeviceService(dr device.Repository) *DeviceService {
	return &DeviceService{deviceRepo: dr}
}

// RegisterDevice は新しい筐体を登録する
func (s *DeviceService) RegisterDevice(ctx context.Context, deviceTypeID, name string) (*device.Device, error) {
	d, err := device.NewDevice(deviceTypeID, name)
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("筐体の保存に失敗: %w", err)
	}
	return d, nil
}

// GetDevice はIDから筐体を取得する
func (s *DeviceService) GetDevice(ctx context.Context, id string) (*device.Device, error) {
	return s.deviceRepo.FindByID(ctx, id)
}

// ListDevices は機種IDから筐体一覧を取得する
func (s *DeviceService) ListDevices(ctx context.Context, deviceTypeID string) ([]*device.Device, error) {
	return s.deviceRepo.FindByType(ctx, deviceTypeID)
}

// SetDeviceStatus は筐体の状態を変更する
func (s *DeviceService) SetDeviceStatus(ctx context.Context, id string, status device.Status) (*device.Device, error) {
	d, err := s.deviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := d.SetStatus(status)
	if err := s.deviceRepo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("筐体の保存に失敗: %w", err)
	}
	return updated, nil
}
