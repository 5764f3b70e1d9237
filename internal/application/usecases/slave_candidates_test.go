package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	domainErrors "github.com/yast/yast-network-sub000/internal/domain/errors"
)

func expectBondSystem(ctx context.Context, f *fixture) {
	bond := entities.ParseInterfaceConfig("bond0", map[string]string{
		"BOOTPROTO":      "static",
		"IPADDR":         "10.0.0.1/24",
		"BONDING_MASTER": "yes",
		"BONDING_SLAVE0": "eth0",
	})
	dhcp := entities.NewInterfaceConfig("eth1")
	dhcp.BootProto = entities.BootProtoDHCP

	f.inventory.On("Detect", ctx).Return([]entities.HardwareDescriptor{
		nic("eth0", "00:11:22:33:44:55", "", 0),
		nic("eth1", "00:11:22:33:44:66", "", 1),
		nic("eth2", "00:11:22:33:44:77", "", 2),
	}, nil)
	f.store.On("List", ctx, entities.TypeUnknown).Return([]string{"bond0", "eth1"}, nil)
	f.store.On("List", ctx, entities.TypeBond).Return([]string{"bond0"}, nil)
	f.store.On("List", ctx, entities.TypeBridge).Return([]string{}, nil)
	f.store.On("Read", ctx, "bond0").Return(bond, nil)
	f.store.On("Read", ctx, "eth1").Return(dhcp, nil)
	f.rules.On("ReadAll", ctx).Return(map[string][]string{}, nil)
}

func TestSlaveCandidatesUseCase_Bond(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	expectBondSystem(ctx, f)

	output, err := f.candidates.Execute(ctx, "bond0")
	require.NoError(t, err)
	assert.Equal(t, "bond0", output.Master)
	assert.Equal(t, entities.TypeBond, output.MasterType)
	assert.Equal(t, []string{"eth0", "eth2"}, output.Candidates)
}

func TestSlaveCandidatesUseCase_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	expectBondSystem(ctx, f)

	_, err := f.candidates.Execute(ctx, "eth1")
	assert.True(t, domainErrors.IsValidationError(err))

	_, err = f.candidates.Execute(ctx, "br5")
	assert.True(t, domainErrors.IsNotFoundError(err))
}
