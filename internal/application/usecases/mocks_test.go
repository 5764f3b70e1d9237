package usecases

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/services"
)

// Mock 구현체들
type MockHardwareInventory struct {
	mock.Mock
}

func (m *MockHardwareInventory) Detect(ctx context.Context) ([]entities.HardwareDescriptor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.HardwareDescriptor), args.Error(1)
}

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

type MockLinkController struct {
	mock.Mock
}

func (m *MockLinkController) SetLinkDown(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// fixture wires the real domain services to mocked ports
type fixture struct {
	inventory  *MockHardwareInventory
	store      *MockConfigStore
	rules      *MockUdevRuleStore
	controller *MockUdevController
	links      *MockLinkController

	session     *services.Session
	table       *services.ItemTable
	engine      *services.UdevRuleEngine
	eligibility *services.SlaveEligibility
	operation   *services.PendingOperation
	logger      *logrus.Logger

	reconcile   *ReconcileUseCase
	writeUdev   *WriteUdevUseCase
	autoinstall *AutoinstallUseCase
	rename      *RenameDeviceUseCase
	candidates  *SlaveCandidatesUseCase
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	f := &fixture{
		inventory:  new(MockHardwareInventory),
		store:      new(MockConfigStore),
		rules:      new(MockUdevRuleStore),
		controller: new(MockUdevController),
		links:      new(MockLinkController),
		session:    services.NewSession("x86_64"),
		logger:     logger,
	}
	f.table = services.NewItemTable(f.inventory, f.store, f.rules, logger)
	f.engine = services.NewUdevRuleEngine(f.rules, f.controller, f.links, f.session, logger)
	f.eligibility = services.NewSlaveEligibility(f.store, f.table, f.session, logger)
	f.operation = services.NewPendingOperation(f.table, f.store, f.engine, f.session, 32, logger)

	f.reconcile = NewReconcileUseCase(f.table, f.eligibility, f.engine, logger)
	f.writeUdev = NewWriteUdevUseCase(f.table, f.engine, f.session, logger)
	f.autoinstall = NewAutoinstallUseCase(f.table, f.operation, f.engine, f.writeUdev, logger)
	f.rename = NewRenameDeviceUseCase(f.table, f.operation, f.writeUdev, logger)
	f.candidates = NewSlaveCandidatesUseCase(f.table, f.eligibility, logger)
	return f
}

// expectUdevApply accepts a rule set write followed by reload and trigger
func (f *fixture) expectUdevApply(ctx context.Context, rules interface{}) {
	f.rules.On("WriteAll", ctx, rules).Return(nil)
	f.controller.On("Reload", ctx).Return(nil)
	f.controller.On("Trigger", ctx, "net", "add").Return(nil)
}

func nic(name, mac, modalias string, index int) entities.HardwareDescriptor {
	return entities.HardwareDescriptor{
		DevName:        name,
		MAC:            mac,
		Bus:            "pci",
		Driver:         "e1000e",
		Modalias:       modalias,
		Type:           entities.TypeEthernet,
		DetectionIndex: index,
	}
}
