package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// UdevRuleEngine synthesizes, edits and persists the udev rules that pin a
// persistent name to each device
type UdevRuleEngine struct {
	store      interfaces.UdevRuleStore
	controller interfaces.UdevController
	links      interfaces.LinkController
	session    *Session
	logger     *logrus.Logger
}

// NewUdevRuleEngine creates a new UdevRuleEngine
func NewUdevRuleEngine(
	store interfaces.UdevRuleStore,
	controller interfaces.UdevController,
	links interfaces.LinkController,
	session *Session,
	logger *logrus.Logger,
) *UdevRuleEngine {
	return &UdevRuleEngine{
		store:      store,
		controller: controller,
		links:      links,
		session:    session,
		logger:     logger,
	}
}

// RuleFor returns the rule attached to the item. Without one, a fallback is
// synthesized from the modalias, or from the MAC address when the modalias
// is unknown. The fallback is not attached to the item.
func (e *UdevRuleEngine) RuleFor(item *entities.Item) *entities.UdevRule {
	if !item.Udev.IsEmpty() {
		return item.Udev
	}
	return fallbackRule(item)
}

func fallbackRule(item *entities.Item) *entities.UdevRule {
	hw := item.Hardware
	name := item.Name()
	if hw == nil || name == "" {
		return nil
	}

	if hw.Modalias != "" {
		return entities.NewUdevRule(
			entities.FormatUdevClause(entities.UdevKeyKernel, "*"),
			entities.FormatUdevClause(entities.UdevKeyModalias, hw.Modalias),
			entities.FormatUdevClause(entities.UdevKeyName, name),
		)
	}
	if hw.HasMAC() {
		return entities.NewUdevRule(
			entities.FormatUdevClause(entities.UdevKeySubsystem, "net"),
			entities.FormatUdevClause(entities.UdevKeyAction, "add"),
			entities.FormatUdevClause(entities.UdevKeyDrivers, "?*"),
			entities.FormatUdevClause(entities.UdevKeyAddress, entities.NormalizeMAC(hw.MAC)),
			entities.FormatUdevClause(entities.UdevKeyDevType, "1"),
			entities.FormatUdevClause(entities.UdevKeyKernel, "*"),
			entities.FormatUdevClause(entities.UdevKeyName, name),
		)
	}
	return nil
}

// GetField returns the value of key in the item's rule, or empty
func (e *UdevRuleEngine) GetField(item *entities.Item, key string) string {
	value, malformed := e.RuleFor(item).Field(key)
	e.logMalformed(item, malformed)
	return value
}

// ReplaceField rewrites the clauses keyed by matchKey in the item's rule.
// A synthesized fallback becomes the item's own rule so the change is kept.
func (e *UdevRuleEngine) ReplaceField(item *entities.Item, matchKey, newKey, newValue string) bool {
	if item.Udev.IsEmpty() {
		item.Udev = fallbackRule(item)
		if item.Udev == nil {
			return false
		}
	}
	return item.Udev.ReplaceField(matchKey, newKey, newValue)
}

// DetectRenamesAndPersist compares each item's kernel name with the NAME its
// rule assigns. Renamed devices lose their KERNEL match and are taken down;
// the session is marked for restart. The complete rule set is then written
// and udev is asked to re-apply names for the net subsystem. The returned
// slice lists the kernel names of renamed devices.
func (e *UdevRuleEngine) DetectRenamesAndPersist(ctx context.Context, items []*entities.Item) ([]string, error) {
	ruleSet := make(map[string][]string, len(items))
	var renamed []string

	for _, item := range items {
		rule := item.Udev
		if rule.IsEmpty() {
			continue
		}

		name, malformed := rule.Field(entities.UdevKeyName)
		e.logMalformed(item, malformed)
		if name == "" {
			e.logger.WithFields(logrus.Fields{
				"item_id": item.ID,
				"rule":    rule.String(),
			}).Warn("udev rule assigns no NAME, dropping it")
			continue
		}

		if hw := item.Hardware; hw != nil && hw.DevName != "" && hw.DevName != name {
			rule.RemoveField(entities.UdevKeyKernel)
			if err := e.links.SetLinkDown(ctx, hw.DevName); err != nil {
				e.logger.WithError(err).WithField("interface", hw.DevName).Warn("Failed to set renamed link down")
			}
			e.session.RequireRestart()
			renamed = append(renamed, hw.DevName)

			e.logger.WithFields(logrus.Fields{
				"interface": hw.DevName,
				"new_name":  name,
			}).Info("Device rename detected")
		}

		if _, exists := ruleSet[name]; exists {
			e.logger.WithFields(logrus.Fields{
				"name":    name,
				"item_id": item.ID,
			}).Warn("Another udev rule already assigns this NAME, skipping")
			continue
		}
		ruleSet[name] = append([]string(nil), rule.Clauses...)
	}

	if err := e.store.WriteAll(ctx, ruleSet); err != nil {
		return renamed, err
	}
	if err := e.controller.Reload(ctx); err != nil {
		return renamed, err
	}
	if err := e.controller.Trigger(ctx, "net", "add"); err != nil {
		return renamed, err
	}

	e.logger.WithFields(logrus.Fields{
		"rules":   len(ruleSet),
		"renamed": len(renamed),
	}).Info("udev rules written")
	return renamed, nil
}

func (e *UdevRuleEngine) logMalformed(item *entities.Item, malformed []string) {
	for _, clause := range malformed {
		err := errors.NewMalformedRuleError("udev clause skipped", nil)
		e.logger.WithError(err).WithFields(logrus.Fields{
			"item_id": item.ID,
			"clause":  clause,
		}).Warn("Malformed udev clause")
	}
}
