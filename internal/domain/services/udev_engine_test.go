package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
)

type udevFixture struct {
	engine     *UdevRuleEngine
	store      *MockUdevRuleStore
	controller *MockUdevController
	links      *MockLinkController
	session    *Session
}

func newUdevFixture() *udevFixture {
	f := &udevFixture{
		store:      new(MockUdevRuleStore),
		controller: new(MockUdevController),
		links:      new(MockLinkController),
		session:    NewSession("x86_64"),
	}
	f.engine = NewUdevRuleEngine(f.store, f.controller, f.links, f.session, newTestLogger())
	return f
}

func TestUdevRuleEngine_RuleForFallback(t *testing.T) {
	engine := newUdevFixture().engine

	tests := []struct {
		name     string
		item     *entities.Item
		expected string
	}{
		{
			name: "modalias 기반 규칙",
			item: &entities.Item{Hardware: &entities.HardwareDescriptor{
				DevName:  "eth0",
				MAC:      "00:11:22:33:44:55",
				Modalias: "pci:v00008086d000010D3sv*",
			}},
			expected: `KERNEL=="*", ENV{MODALIAS}=="pci:v00008086d000010D3sv*", NAME="eth0"`,
		},
		{
			name: "MAC 기반 규칙",
			item: &entities.Item{Hardware: &entities.HardwareDescriptor{
				DevName: "eth1",
				MAC:     "00:11:22:AA:BB:CC",
			}},
			expected: `SUBSYSTEM=="net", ACTION=="add", DRIVERS=="?*", ATTR{address}=="00:11:22:aa:bb:cc", ATTR{type}=="1", KERNEL=="*", NAME="eth1"`,
		},
		{
			name: "설정 이름이 NAME이 됨",
			item: &entities.Item{
				Hardware: &entities.HardwareDescriptor{DevName: "eth2", MAC: "00:11:22:33:44:77"},
				Config:   entities.NewInterfaceConfig("lan0"),
			},
			expected: `SUBSYSTEM=="net", ACTION=="add", DRIVERS=="?*", ATTR{address}=="00:11:22:33:44:77", ATTR{type}=="1", KERNEL=="*", NAME="lan0"`,
		},
		{
			name:     "식별 정보 없음",
			item:     &entities.Item{Hardware: &entities.HardwareDescriptor{DevName: "eth3", MAC: entities.ZeroMAC}},
			expected: "",
		},
		{
			name:     "가상 장치",
			item:     &entities.Item{Config: entities.NewInterfaceConfig("bond0")},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.RuleFor(tt.item).String())
			assert.Nil(t, tt.item.Udev, "fallback must not be attached")
		})
	}
}

func TestUdevRuleEngine_RuleForPrefersAttachedRule(t *testing.T) {
	engine := newUdevFixture().engine
	item := &entities.Item{
		Hardware: &entities.HardwareDescriptor{DevName: "eth0", Modalias: "pci:x"},
		Udev:     entities.NewUdevRule(`KERNELS=="0000:00:19.0"`, `NAME="lan0"`),
	}

	assert.Same(t, item.Udev, engine.RuleFor(item))
	assert.Equal(t, "lan0", engine.GetField(item, entities.UdevKeyName))
	assert.Equal(t, "0000:00:19.0", engine.GetField(item, entities.UdevKeyKernels))
	assert.Empty(t, engine.GetField(&entities.Item{Config: entities.NewInterfaceConfig("br0")}, entities.UdevKeyName))
}

func TestUdevRuleEngine_ReplaceFieldAttachesFallback(t *testing.T) {
	engine := newUdevFixture().engine
	item := &entities.Item{Hardware: &entities.HardwareDescriptor{DevName: "eth0", MAC: "00:11:22:33:44:55"}}

	require.True(t, engine.ReplaceField(item, entities.UdevKeyName, entities.UdevKeyName, "lan0"))
	require.NotNil(t, item.Udev)
	assert.Equal(t, "lan0", engine.GetField(item, entities.UdevKeyName))

	virtual := &entities.Item{Config: entities.NewInterfaceConfig("bond0")}
	assert.False(t, engine.ReplaceField(virtual, entities.UdevKeyName, entities.UdevKeyName, "bond1"))
	assert.Nil(t, virtual.Udev)
}

func TestUdevRuleEngine_DetectRenamesAndPersist(t *testing.T) {
	ctx := context.Background()
	f := newUdevFixture()

	renamed := &entities.Item{
		ID:       0,
		Hardware: &entities.HardwareDescriptor{DevName: "eth0", MAC: "00:11:22:33:44:55"},
		Udev:     entities.NewUdevRule(`ATTR{address}=="00:11:22:33:44:55"`, `KERNEL=="eth*"`, `NAME="lan0"`),
	}
	unchanged := &entities.Item{
		ID:       1,
		Hardware: &entities.HardwareDescriptor{DevName: "eth1", MAC: "00:11:22:33:44:66"},
		Udev:     entities.NewUdevRule(`ATTR{address}=="00:11:22:33:44:66"`, `KERNEL=="eth*"`, `NAME="eth1"`),
	}
	nameless := &entities.Item{
		ID:       2,
		Hardware: &entities.HardwareDescriptor{DevName: "eth2"},
		Udev:     entities.NewUdevRule(`KERNEL=="eth*"`),
	}
	duplicate := &entities.Item{
		ID:   3,
		Udev: entities.NewUdevRule(`KERNELS=="0000:00:1f.6"`, `NAME="eth1"`),
	}
	virtual := &entities.Item{ID: 4, Config: entities.NewInterfaceConfig("bond0")}

	expected := map[string][]string{
		"lan0": {`ATTR{address}=="00:11:22:33:44:55"`, `NAME="lan0"`},
		"eth1": {`ATTR{address}=="00:11:22:33:44:66"`, `KERNEL=="eth*"`, `NAME="eth1"`},
	}
	f.links.On("SetLinkDown", ctx, "eth0").Return(nil)
	f.store.On("WriteAll", ctx, expected).Return(nil)
	f.controller.On("Reload", ctx).Return(nil)
	f.controller.On("Trigger", ctx, "net", "add").Return(nil)

	names, err := f.engine.DetectRenamesAndPersist(ctx, []*entities.Item{renamed, unchanged, nameless, duplicate, virtual})
	require.NoError(t, err)

	assert.Equal(t, []string{"eth0"}, names)
	assert.True(t, f.session.RestartRequired())
	assert.NotContains(t, renamed.Udev.String(), "KERNEL==")
	f.links.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.controller.AssertExpectations(t)
}

func TestUdevRuleEngine_LinkDownFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newUdevFixture()

	item := &entities.Item{
		Hardware: &entities.HardwareDescriptor{DevName: "eth0"},
		Udev:     entities.NewUdevRule(`KERNEL=="eth0"`, `NAME="lan0"`),
	}
	f.links.On("SetLinkDown", ctx, "eth0").Return(errors.New("operation not permitted"))
	f.store.On("WriteAll", ctx, mock.Anything).Return(nil)
	f.controller.On("Reload", ctx).Return(nil)
	f.controller.On("Trigger", ctx, "net", "add").Return(nil)

	names, err := f.engine.DetectRenamesAndPersist(ctx, []*entities.Item{item})
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0"}, names)
	assert.True(t, f.session.RestartRequired())
}

func TestUdevRuleEngine_WriteFailureSkipsReload(t *testing.T) {
	ctx := context.Background()
	f := newUdevFixture()

	item := &entities.Item{
		Hardware: &entities.HardwareDescriptor{DevName: "eth0"},
		Udev:     entities.NewUdevRule(`KERNEL=="eth*"`, `NAME="eth0"`),
	}
	f.store.On("WriteAll", ctx, mock.Anything).Return(errors.New("read-only file system"))

	names, err := f.engine.DetectRenamesAndPersist(ctx, []*entities.Item{item})
	require.Error(t, err)
	assert.Empty(t, names)
	assert.False(t, f.session.RestartRequired())
	f.controller.AssertNotCalled(t, "Reload", mock.Anything)
	f.controller.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything)
}
