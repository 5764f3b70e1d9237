package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// SlaveValidator decides whether item may be enslaved under master
type SlaveValidator func(master string, item *entities.Item) bool

// SlaveEligibility answers which items may become bond or bridge slaves.
// Its indices map slave device names to their master and are rebuilt from
// the configuration store as a whole, never patched.
type SlaveEligibility struct {
	store   interfaces.ConfigStore
	table   *ItemTable
	session *Session
	logger  *logrus.Logger

	bondIndex   map[string]string
	bridgeIndex map[string]string
}

// NewSlaveEligibility creates a new SlaveEligibility
func NewSlaveEligibility(
	store interfaces.ConfigStore,
	table *ItemTable,
	session *Session,
	logger *logrus.Logger,
) *SlaveEligibility {
	return &SlaveEligibility{
		store:       store,
		table:       table,
		session:     session,
		logger:      logger,
		bondIndex:   map[string]string{},
		bridgeIndex: map[string]string{},
	}
}

// Refresh rebuilds both indices
func (s *SlaveEligibility) Refresh(ctx context.Context) error {
	if _, err := s.BuildBondIndex(ctx); err != nil {
		return err
	}
	_, err := s.BuildBridgeIndex(ctx)
	return err
}

// BuildBondIndex reads every bond configuration and inverts its slave slots
// into a slave -> master map
func (s *SlaveEligibility) BuildBondIndex(ctx context.Context) (map[string]string, error) {
	index, err := s.buildIndex(ctx, entities.TypeBond, (*entities.InterfaceConfig).BondSlaves)
	if err != nil {
		return nil, err
	}
	s.bondIndex = index
	return index, nil
}

// BuildBridgeIndex reads every bridge configuration and inverts its port
// list into a port -> bridge map
func (s *SlaveEligibility) BuildBridgeIndex(ctx context.Context) (map[string]string, error) {
	index, err := s.buildIndex(ctx, entities.TypeBridge, func(cfg *entities.InterfaceConfig) []string {
		if cfg.Bridge == nil {
			return nil
		}
		return cfg.Bridge.Ports
	})
	if err != nil {
		return nil, err
	}
	s.bridgeIndex = index
	return index, nil
}

func (s *SlaveEligibility) buildIndex(
	ctx context.Context,
	kind entities.DeviceType,
	slavesOf func(*entities.InterfaceConfig) []string,
) (map[string]string, error) {
	masters, err := s.store.List(ctx, kind)
	if err != nil {
		return nil, errors.NewSourceUnavailableError("listing "+string(kind)+" configurations failed", err)
	}

	index := map[string]string{}
	for _, master := range masters {
		cfg, err := s.store.Read(ctx, master)
		if err != nil {
			s.logger.WithError(err).WithField("master", master).Warn("Skipping unreadable master configuration")
			continue
		}
		for _, slave := range slavesOf(cfg) {
			if owner, taken := index[slave]; taken && owner != master {
				s.logger.WithFields(logrus.Fields{
					"slave":  slave,
					"master": master,
					"owner":  owner,
				}).Warn("Slave is claimed by more than one master")
				continue
			}
			index[slave] = master
		}
	}
	return index, nil
}

// BondMaster returns the bond that enslaves name, if any
func (s *SlaveEligibility) BondMaster(name string) (string, bool) {
	master, ok := s.bondIndex[name]
	return master, ok
}

// BridgeMaster returns the bridge that has name as port, if any
func (s *SlaveEligibility) BridgeMaster(name string) (string, bool) {
	master, ok := s.bridgeIndex[name]
	return master, ok
}

// IsBondable reports whether item may be enslaved into the bond master.
// Start mode is deliberately not part of the decision.
func (s *SlaveEligibility) IsBondable(master string, item *entities.Item) bool {
	name := item.Name()
	if owner, ok := s.bondIndex[name]; ok && owner != master {
		return false
	}

	// TODO: confirm with product owners whether the layer 2 requirement is
	// specific to s390 channel devices or should apply everywhere
	if s.session.RequiresLayer2() {
		if item.Config == nil || item.Config.S390 == nil || !item.Config.S390.Layer2 {
			return false
		}
	}

	if item.Config == nil {
		return true
	}
	return item.Config.BootProto == entities.BootProtoNone
}

// IsBridgeable reports whether item may become a port of the bridge master
func (s *SlaveEligibility) IsBridgeable(master string, item *entities.Item) bool {
	name := item.Name()
	if _, bonded := s.bondIndex[name]; bonded {
		return false
	}
	if owner, ok := s.bridgeIndex[name]; ok && owner != master {
		return false
	}
	if item.Type() == entities.TypeBridge {
		return false
	}
	if item.Config == nil {
		return true
	}
	return item.Config.StartMode != entities.StartModeNFSRoot
}

// Candidates applies validator to every item except the master itself and
// returns the accepted ids in table order
func (s *SlaveEligibility) Candidates(masterID int, validator SlaveValidator) []int {
	master := s.table.Get(masterID)
	if master == nil {
		return nil
	}
	masterName := master.Name()

	ids := []int{}
	for _, item := range s.table.Items() {
		if item.ID == masterID {
			continue
		}
		if validator(masterName, item) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
