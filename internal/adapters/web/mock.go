// Package web holds test doubles shared by the HTTP adapter packages.
package web

import (
	"context"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockScanService is a mock of ports.ScanService.
type MockScanService struct {
	mock.Mock
}

var _ ports.ScanService = (*MockScanService)(nil)

func (m *MockScanService) AccessPoints() []domain.AccessPoint {
	args := m.Called()
	return args.Get(0).([]domain.AccessPoint)
}

func (m *MockScanService) AccessPoint(bssid domain.MAC) (domain.AccessPoint, bool) {
	args := m.Called(bssid)
	return args.Get(0).(domain.AccessPoint), args.Bool(1)
}

func (m *MockScanService) Clients() []domain.Client {
	args := m.Called()
	return args.Get(0).([]domain.Client)
}

func (m *MockScanService) Counts() domain.Counts {
	args := m.Called()
	return args.Get(0).(domain.Counts)
}

func (m *MockScanService) ProbeCache() []domain.ProbeEntry {
	args := m.Called()
	return args.Get(0).([]domain.ProbeEntry)
}

func (m *MockScanService) Associations() []domain.Association {
	args := m.Called()
	return args.Get(0).([]domain.Association)
}

func (m *MockScanService) Status() domain.ScanState {
	args := m.Called()
	return args.Get(0).(domain.ScanState)
}

func (m *MockScanService) Statistics() domain.Statistics {
	args := m.Called()
	return args.Get(0).(domain.Statistics)
}

func (m *MockScanService) SSIDStats() []domain.SSIDStat {
	args := m.Called()
	return args.Get(0).([]domain.SSIDStat)
}

func (m *MockScanService) Start(mode domain.ScanMode) error {
	return m.Called(mode).Error(0)
}

func (m *MockScanService) Stop() error {
	return m.Called().Error(0)
}

func (m *MockScanService) SetDuration(d time.Duration) error {
	return m.Called(d).Error(0)
}

func (m *MockScanService) SetHopInterval(d time.Duration) error {
	return m.Called(d).Error(0)
}

func (m *MockScanService) SetMinRSSI(rssi int) error {
	return m.Called(rssi).Error(0)
}

func (m *MockScanService) SetChannels(channels []int) error {
	return m.Called(channels).Error(0)
}

func (m *MockScanService) SetFeature(name domain.Feature, on bool) error {
	return m.Called(name, on).Error(0)
}

func (m *MockScanService) SaveSnapshot(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockScanService) LoadSnapshot(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
