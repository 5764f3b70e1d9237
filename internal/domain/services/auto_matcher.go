package services

import (
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
)

// MatchRule names the rule of the cascade that selected a device
type MatchRule string

const (
	MatchNone     MatchRule = ""
	MatchByMAC    MatchRule = "mac"
	MatchByBus    MatchRule = "bus"
	MatchByModule MatchRule = "module"
	MatchByType   MatchRule = "type"
	MatchLinkUp   MatchRule = "link_up"
	MatchActive   MatchRule = "active"
	MatchDriver   MatchRule = "driver"
)

// AutoMatcher resolves autoinstall profile interfaces to detected hardware.
// Explicit identity wins over module association, which wins over the
// positional fallbacks. Hardware is always scanned in detection order.
type AutoMatcher struct {
	hardware   []entities.HardwareDescriptor
	profile    *entities.Profile
	existing   []entities.DeviceIdentity
	claimed    map[int]bool
	configured int
	logger     *logrus.Logger
}

// NewAutoMatcher creates a matcher over one hardware snapshot. existing
// lists the names of configurations present before the run.
func NewAutoMatcher(
	hardware []entities.HardwareDescriptor,
	profile *entities.Profile,
	existing []string,
	logger *logrus.Logger,
) *AutoMatcher {
	sorted := append([]entities.HardwareDescriptor(nil), hardware...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DetectionIndex < sorted[j].DetectionIndex
	})
	if profile == nil {
		profile = &entities.Profile{}
	}

	return &AutoMatcher{
		hardware: sorted,
		profile:  profile,
		existing: lo.Map(existing, func(name string, _ int) entities.DeviceIdentity {
			return entities.ParseDeviceIdentity(name)
		}),
		claimed: map[int]bool{},
		logger:  logger,
	}
}

// FindMatchingDevice returns the hardware for the profile interface or nil
func (m *AutoMatcher) FindMatchingDevice(pi entities.ProfileInterface) *entities.HardwareDescriptor {
	hw, _ := m.Match(pi)
	return hw
}

// Match runs the rule cascade and reports which rule matched
func (m *AutoMatcher) Match(pi entities.ProfileInterface) (*entities.HardwareDescriptor, MatchRule) {
	identity := pi.Identity()

	switch identity.Kind {
	case entities.IdentityByMac:
		if hw := m.first(func(h entities.HardwareDescriptor) bool { return h.MatchesMAC(identity.MAC) }); hw != nil {
			return m.unlessClaimed(pi, hw, MatchByMAC)
		}
	case entities.IdentityByBus:
		if hw := m.first(func(h entities.HardwareDescriptor) bool {
			return h.Bus == identity.Bus && h.BusID == identity.BusID
		}); hw != nil {
			return m.unlessClaimed(pi, hw, MatchByBus)
		}
	}

	// 같은 모듈을 쓰는 카드가 여럿이면 아직 설정되지 않은 첫 카드
	if module := m.profile.ModuleFor(pi.Device); module != "" {
		if hw := m.first(func(h entities.HardwareDescriptor) bool {
			return h.Driver == module && !m.claimed[h.DetectionIndex]
		}); hw != nil {
			return hw, MatchByModule
		}
	}

	if m.configured > 0 {
		if hw := m.first(func(h entities.HardwareDescriptor) bool {
			return hardwareType(h) == identity.Type && !m.referenced(h)
		}); hw != nil {
			return hw, MatchByType
		}
		m.logger.WithField("device", pi.Device).Debug("No unreferenced hardware of the requested type")
		return nil, MatchNone
	}

	if hw := m.first(func(h entities.HardwareDescriptor) bool { return h.LinkUp }); hw != nil {
		return hw, MatchLinkUp
	}
	if hw := m.first(func(h entities.HardwareDescriptor) bool { return h.Active }); hw != nil {
		return hw, MatchActive
	}
	if hw := m.first(func(h entities.HardwareDescriptor) bool { return h.Driver != "" }); hw != nil {
		return hw, MatchDriver
	}
	return nil, MatchNone
}

// unlessClaimed keeps an explicit identity bound to its hardware: when that
// hardware was already configured in this run the interface matches nothing
func (m *AutoMatcher) unlessClaimed(
	pi entities.ProfileInterface,
	hw *entities.HardwareDescriptor,
	rule MatchRule,
) (*entities.HardwareDescriptor, MatchRule) {
	if m.claimed[hw.DetectionIndex] {
		m.logger.WithFields(logrus.Fields{
			"device":   pi.Device,
			"hardware": hw.DevName,
		}).Debug("Hardware named by identity is already configured")
		return nil, MatchNone
	}
	return hw, rule
}

// IsClaimed reports whether hw was configured in this run
func (m *AutoMatcher) IsClaimed(hw *entities.HardwareDescriptor) bool {
	return hw != nil && m.claimed[hw.DetectionIndex]
}

// MarkConfigured records that hw was configured in this run
func (m *AutoMatcher) MarkConfigured(hw *entities.HardwareDescriptor) {
	if hw != nil {
		m.claimed[hw.DetectionIndex] = true
	}
	m.configured++
}

// Configured returns how many devices were configured in this run
func (m *AutoMatcher) Configured() int {
	return m.configured
}

func (m *AutoMatcher) first(predicate func(entities.HardwareDescriptor) bool) *entities.HardwareDescriptor {
	_, i, ok := lo.FindIndexOf(m.hardware, predicate)
	if !ok {
		return nil
	}
	return &m.hardware[i]
}

func (m *AutoMatcher) referenced(hw entities.HardwareDescriptor) bool {
	if m.claimed[hw.DetectionIndex] {
		return true
	}
	return lo.ContainsBy(m.existing, func(identity entities.DeviceIdentity) bool {
		return identity.Matches(&hw)
	})
}

func hardwareType(hw entities.HardwareDescriptor) entities.DeviceType {
	if hw.Type != entities.TypeUnknown {
		return hw.Type
	}
	return entities.DeviceTypeFromName(hw.DevName)
}
