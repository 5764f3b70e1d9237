package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
)

// MockHardwareInventory는 HardwareInventory 인터페이스의 목 구현체입니다
type MockHardwareInventory struct {
	mock.Mock
}

func (m *MockHardwareInventory) Detect(ctx context.Context) ([]entities.HardwareDescriptor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.HardwareDescriptor), args.Error(1)
}

// MockConfigStore는 ConfigStore 인터페이스의 목 구현체입니다
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) List(ctx context.Context, kind entities.DeviceType) ([]string, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockConfigStore) Read(ctx context.Context, name string) (*entities.InterfaceConfig, error) {
	args := m.Called(ctx, name)
	cfg, _ := args.Get(0).(*entities.InterfaceConfig)
	return cfg, args.Error(1)
}

func (m *MockConfigStore) Write(ctx context.Context, name string, cfg *entities.InterfaceConfig) error {
	args := m.Called(ctx, name, cfg)
	return args.Error(0)
}

func (m *MockConfigStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockUdevRuleStore는 UdevRuleStore 인터페이스의 목 구현체입니다
type MockUdevRuleStore struct {
	mock.Mock
}

func (m *MockUdevRuleStore) ReadAll(ctx context.Context) (map[string][]string, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).(map[string][]string)
	return rules, args.Error(1)
}

func (m *MockUdevRuleStore) WriteAll(ctx context.Context, rules map[string][]string) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

// MockUdevController는 UdevController 인터페이스의 목 구현체입니다
type MockUdevController struct {
	mock.Mock
}

func (m *MockUdevController) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUdevController) Trigger(ctx context.Context, subsystem, action string) error {
	args := m.Called(ctx, subsystem, action)
	return args.Error(0)
}

// MockLinkController는 LinkController 인터페이스의 목 구현체입니다
type MockLinkController struct {
	mock.Mock
}

func (m *MockLinkController) SetLinkDown(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func ethernet(name, mac string, index int) entities.HardwareDescriptor {
	return entities.HardwareDescriptor{
		DevName:        name,
		MAC:            mac,
		Bus:            "pci",
		Driver:         "e1000e",
		Type:           entities.TypeEthernet,
		DetectionIndex: index,
	}
}
