package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	domainErrors "github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/services"
)

func expectEmptySystem(ctx context.Context, f *fixture, hardware ...entities.HardwareDescriptor) {
	f.inventory.On("Detect", ctx).Return(hardware, nil)
	f.store.On("List", ctx, entities.TypeUnknown).Return([]string{}, nil)
	f.rules.On("ReadAll", ctx).Return(map[string][]string{}, nil)
}

func TestAutoinstallUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f,
		nic("eth0", "00:11:22:33:44:55", "pci:v00008086d0000100E", 0),
		nic("eth1", "00:11:22:33:44:66", "pci:v00008086d000010D3", 1),
	)

	profile := &entities.Profile{Interfaces: []entities.ProfileInterface{
		{Device: "eth-id-00:11:22:33:44:66", BootProto: "dhcp", StartMode: "auto"},
		{Device: "bond0", BootProto: "static", IPAddr: "10.0.0.1/24", Fields: map[string]string{
			"BONDING_MASTER": "yes",
			"BONDING_SLAVE0": "eth0",
		}},
		{Device: "wlan9", BootProto: "dhcp"},
	}}

	f.store.On("Write", ctx, "eth1", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.Name == "eth1" && cfg.BootProto == "dhcp" && cfg.StartMode == "auto"
	})).Return(nil)
	f.store.On("Write", ctx, "bond0", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.Bond != nil && cfg.Bond.Slaves[0] == "eth0"
	})).Return(nil)
	f.expectUdevApply(ctx, map[string][]string{
		"eth1": {`KERNEL=="*"`, `ENV{MODALIAS}=="pci:v00008086d000010D3"`, `NAME="eth1"`},
	})

	output, err := f.autoinstall.Execute(ctx, profile)
	require.NoError(t, err)

	assert.Equal(t, 1, output.Matched)
	assert.Equal(t, 1, output.Virtual)
	assert.Equal(t, 1, output.Unmatched)
	require.Len(t, output.Results, 3)

	assert.Equal(t, "eth1", output.Results[0].Hardware)
	assert.Equal(t, "eth1", output.Results[0].Name)
	assert.Equal(t, services.MatchByMAC, output.Results[0].Rule)
	assert.NoError(t, output.Results[0].Err)

	assert.Equal(t, "bond0", output.Results[1].Name)
	assert.Empty(t, output.Results[1].Hardware)
	assert.NoError(t, output.Results[1].Err)

	assert.True(t, domainErrors.IsUnmatchableProfileInterfaceError(output.Results[2].Err))

	require.NotNil(t, output.Udev)
	assert.Empty(t, output.Udev.Renamed)
	assert.True(t, f.session.Modified())
	assert.Equal(t, services.OpNone, f.operation.Kind())
	f.store.AssertExpectations(t)
	f.rules.AssertExpectations(t)
}

func TestAutoinstallUseCase_NamedDeviceIsRenamed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f, nic("eth0", "00:11:22:33:44:55", "", 0))
	f.store.On("Write", ctx, "eth0", mock.Anything).Return(nil)
	f.store.On("Write", ctx, "lan0", mock.Anything).Return(nil)
	f.store.On("Delete", ctx, "eth0").Return(nil)
	f.links.On("SetLinkDown", ctx, "eth0").Return(nil)
	f.expectUdevApply(ctx, map[string][]string{
		"lan0": {`SUBSYSTEM=="net"`, `ACTION=="add"`, `DRIVERS=="?*"`, `ATTR{address}=="00:11:22:33:44:55"`, `ATTR{type}=="1"`, `NAME="lan0"`},
	})

	profile := &entities.Profile{
		Interfaces: []entities.ProfileInterface{{Device: "lan0", BootProto: "dhcp"}},
		Modules:    []entities.ProfileModule{{Device: "lan0", Module: "e1000e"}},
	}

	output, err := f.autoinstall.Execute(ctx, profile)
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	assert.Equal(t, services.MatchByModule, output.Results[0].Rule)
	assert.Equal(t, "lan0", output.Results[0].Name)
	assert.Equal(t, []string{"eth0"}, output.Udev.Renamed)
	assert.True(t, output.Udev.RestartRequired)
	assert.NotNil(t, f.table.FindByName("lan0"))
}

func TestAutoinstallUseCase_NothingApplied(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f)

	output, err := f.autoinstall.Execute(ctx, &entities.Profile{Interfaces: []entities.ProfileInterface{{Device: "eth0"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Unmatched)
	assert.Nil(t, output.Udev)
	f.rules.AssertNotCalled(t, "WriteAll", mock.Anything, mock.Anything)
}

func TestAutoinstallUseCase_CommitFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f)
	f.store.On("Write", ctx, "br0", mock.Anything).Return(domainErrors.NewSystemError("disk full", nil))

	output, err := f.autoinstall.Execute(ctx, &entities.Profile{Interfaces: []entities.ProfileInterface{
		{Device: "br0", Fields: map[string]string{"BRIDGE": "yes"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Unmatched)
	assert.True(t, domainErrors.IsCommitFailedError(output.Results[0].Err))
	assert.Equal(t, services.OpNone, f.operation.Kind())
	assert.Equal(t, 0, f.table.Len())
}

func TestAutoinstallUseCase_VirtualDeviceListedFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	eth0 := nic("eth0", "00:11:22:33:44:55", "", 0)
	eth0.LinkUp = true
	expectEmptySystem(ctx, f, eth0)

	f.store.On("Write", ctx, "bond0", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.Bond != nil && cfg.Bond.Slaves[0] == "eth1"
	})).Return(nil)
	f.store.On("Write", ctx, "eth0", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.Bond == nil && cfg.BootProto == "dhcp"
	})).Return(nil)
	f.expectUdevApply(ctx, map[string][]string{
		"eth0": {`SUBSYSTEM=="net"`, `ACTION=="add"`, `DRIVERS=="?*"`, `ATTR{address}=="00:11:22:33:44:55"`, `ATTR{type}=="1"`, `KERNEL=="*"`, `NAME="eth0"`},
	})

	profile := &entities.Profile{Interfaces: []entities.ProfileInterface{
		{Device: "bond0", BootProto: "static", IPAddr: "10.0.0.1/24", Fields: map[string]string{
			"BONDING_MASTER": "yes",
			"BONDING_SLAVE0": "eth1",
		}},
		{Device: "eth0", BootProto: "dhcp"},
	}}

	output, err := f.autoinstall.Execute(ctx, profile)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	assert.NoError(t, output.Results[0].Err)
	assert.Equal(t, "bond0", output.Results[0].Name)
	assert.Empty(t, output.Results[0].Hardware)
	assert.Equal(t, services.MatchNone, output.Results[0].Rule)

	assert.NoError(t, output.Results[1].Err)
	assert.Equal(t, "eth0", output.Results[1].Hardware)
	assert.Equal(t, services.MatchLinkUp, output.Results[1].Rule)

	assert.Equal(t, 1, output.Matched)
	assert.Equal(t, 1, output.Virtual)
	assert.Empty(t, output.Udev.Renamed)
	f.store.AssertExpectations(t)
	f.store.AssertNumberOfCalls(t, "Write", 2)
}

func TestAutoinstallUseCase_SameModuleConfiguresEachCardOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f,
		nic("eth0", "00:11:22:33:44:55", "", 0),
		nic("eth1", "00:11:22:33:44:66", "", 1),
	)

	f.store.On("Write", ctx, "eth0", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.BootProto == "dhcp"
	})).Return(nil).Once()
	f.store.On("Write", ctx, "eth1", mock.MatchedBy(func(cfg *entities.InterfaceConfig) bool {
		return cfg.BootProto == "static" && cfg.IPAddr == "10.0.0.2/24"
	})).Return(nil).Once()
	f.expectUdevApply(ctx, map[string][]string{
		"eth0": {`SUBSYSTEM=="net"`, `ACTION=="add"`, `DRIVERS=="?*"`, `ATTR{address}=="00:11:22:33:44:55"`, `ATTR{type}=="1"`, `KERNEL=="*"`, `NAME="eth0"`},
		"eth1": {`SUBSYSTEM=="net"`, `ACTION=="add"`, `DRIVERS=="?*"`, `ATTR{address}=="00:11:22:33:44:66"`, `ATTR{type}=="1"`, `KERNEL=="*"`, `NAME="eth1"`},
	})

	profile := &entities.Profile{
		Interfaces: []entities.ProfileInterface{
			{Device: "eth0", BootProto: "dhcp"},
			{Device: "eth1", BootProto: "static", IPAddr: "10.0.0.2/24"},
		},
		Modules: []entities.ProfileModule{
			{Device: "eth0", Module: "e1000e"},
			{Device: "eth1", Module: "e1000e"},
		},
	}

	output, err := f.autoinstall.Execute(ctx, profile)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	assert.Equal(t, "eth0", output.Results[0].Hardware)
	assert.Equal(t, "eth1", output.Results[1].Hardware)
	for _, result := range output.Results {
		assert.NoError(t, result.Err)
		assert.Equal(t, services.MatchByModule, result.Rule)
	}
	assert.Equal(t, 2, output.Matched)
	f.store.AssertExpectations(t)
	f.store.AssertNumberOfCalls(t, "Write", 2)
}

func TestAutoinstallUseCase_IdentityOfConfiguredCardIsUnmatchable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	expectEmptySystem(ctx, f, nic("eth0", "00:11:22:33:44:55", "pci:v00008086d0000100E", 0))
	f.store.On("Write", ctx, "eth0", mock.Anything).Return(nil).Once()
	f.expectUdevApply(ctx, mock.Anything)

	profile := &entities.Profile{Interfaces: []entities.ProfileInterface{
		{Device: "eth-id-00:11:22:33:44:55", BootProto: "dhcp"},
		{Device: "eth-id-00:11:22:33:44:55", BootProto: "static", IPAddr: "10.0.0.2/24"},
	}}

	output, err := f.autoinstall.Execute(ctx, profile)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	assert.NoError(t, output.Results[0].Err)
	assert.True(t, domainErrors.IsUnmatchableProfileInterfaceError(output.Results[1].Err))
	assert.Equal(t, 1, output.Matched)
	assert.Equal(t, 1, output.Unmatched)
	f.store.AssertNumberOfCalls(t, "Write", 1)
}
