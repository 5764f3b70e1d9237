package services

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// ItemTable is the in-memory record set joining detected hardware with the
// persisted configurations and udev rules
type ItemTable struct {
	inventory   interfaces.HardwareInventory
	configStore interfaces.ConfigStore
	udevStore   interfaces.UdevRuleStore
	logger      *logrus.Logger

	items  []*entities.Item
	nextID int
}

// NewItemTable creates a new, empty ItemTable
func NewItemTable(
	inventory interfaces.HardwareInventory,
	configStore interfaces.ConfigStore,
	udevStore interfaces.UdevRuleStore,
	logger *logrus.Logger,
) *ItemTable {
	return &ItemTable{
		inventory:   inventory,
		configStore: configStore,
		udevStore:   udevStore,
		logger:      logger,
	}
}

// Rebuild re-reads all sources and replaces the table with a full outer
// join of hardware and configurations. Configurations come first in store
// order, followed by unclaimed hardware in detection order. IDs restart at
// zero. On failure the previous table is kept.
func (t *ItemTable) Rebuild(ctx context.Context) error {
	detected, err := t.inventory.Detect(ctx)
	if err != nil {
		return errors.NewSourceUnavailableError("hardware detection failed", err)
	}

	names, err := t.configStore.List(ctx, entities.TypeUnknown)
	if err != nil {
		return errors.NewSourceUnavailableError("listing interface configurations failed", err)
	}

	rules, err := t.udevStore.ReadAll(ctx)
	if err != nil {
		t.logger.WithError(err).Warn("Reading udev rules failed, continuing without persistent names")
		rules = map[string][]string{}
	}

	hardware := append([]entities.HardwareDescriptor(nil), detected...)
	sort.SliceStable(hardware, func(i, j int) bool {
		return hardware[i].DetectionIndex < hardware[j].DetectionIndex
	})
	claimed := make([]bool, len(hardware))

	items := make([]*entities.Item, 0, len(names)+len(hardware))
	for _, name := range lo.Uniq(names) {
		cfg, err := t.configStore.Read(ctx, name)
		if err != nil {
			t.logger.WithError(err).WithField("config", name).Warn("Skipping unreadable interface configuration")
			continue
		}

		item := &entities.Item{ID: len(items), Config: cfg, Committed: true}
		identity := entities.ParseDeviceIdentity(name)
		for i := range hardware {
			if !claimed[i] && identity.Matches(&hardware[i]) {
				claimed[i] = true
				item.Hardware = &hardware[i]
				break
			}
		}
		items = append(items, item)
	}

	for i := range hardware {
		if claimed[i] {
			continue
		}
		items = append(items, &entities.Item{ID: len(items), Hardware: &hardware[i], Committed: true})
	}

	for _, item := range items {
		item.Udev = lookupRule(rules, item)
	}

	t.items = items
	t.nextID = len(items)

	t.logger.WithFields(logrus.Fields{
		"items":    len(items),
		"hardware": len(hardware),
		"configs":  len(names),
		"rules":    len(rules),
	}).Debug("Item table rebuilt")
	return nil
}

// lookupRule finds the persisted rule by configuration name first and by
// kernel name second
func lookupRule(rules map[string][]string, item *entities.Item) *entities.UdevRule {
	candidates := []string{}
	if item.Config != nil {
		candidates = append(candidates, item.Config.Name)
	}
	if item.Hardware != nil && item.Hardware.DevName != "" {
		candidates = append(candidates, item.Hardware.DevName)
	}
	for _, name := range candidates {
		if clauses, ok := rules[name]; ok && len(clauses) > 0 {
			return entities.NewUdevRule(clauses...)
		}
	}
	return nil
}

// Items returns the items in table order
func (t *ItemTable) Items() []*entities.Item {
	return append([]*entities.Item(nil), t.items...)
}

// Len returns the number of items
func (t *ItemTable) Len() int {
	return len(t.items)
}

// Get returns the item with the given id or nil
func (t *ItemTable) Get(id int) *entities.Item {
	for _, item := range t.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Hardware returns the hardware of an item or nil
func (t *ItemTable) Hardware(id int) *entities.HardwareDescriptor {
	if item := t.Get(id); item != nil {
		return item.Hardware
	}
	return nil
}

// Config returns the configuration of an item or nil
func (t *ItemTable) Config(id int) *entities.InterfaceConfig {
	if item := t.Get(id); item != nil {
		return item.Config
	}
	return nil
}

// Udev returns the udev rule attached to an item or nil
func (t *ItemTable) Udev(id int) *entities.UdevRule {
	if item := t.Get(id); item != nil {
		return item.Udev
	}
	return nil
}

// FindByName returns the first item with the given device name or nil
func (t *ItemTable) FindByName(name string) *entities.Item {
	item, ok := lo.Find(t.items, func(item *entities.Item) bool {
		return item.Name() == name
	})
	if !ok {
		return nil
	}
	return item
}

// Add appends an item and assigns it the next free id
func (t *ItemTable) Add(item *entities.Item) int {
	item.ID = t.nextID
	t.nextID++
	t.items = append(t.items, item)
	return item.ID
}

// Remove drops the item with the given id
func (t *ItemTable) Remove(id int) bool {
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

// ConfigNames returns the names of all configured items
func (t *ItemTable) ConfigNames() []string {
	return lo.FilterMap(t.items, func(item *entities.Item, _ int) (string, bool) {
		if item.Config == nil {
			return "", false
		}
		return item.Config.Name, true
	})
}
