package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
	"github.com/yast/yast-network-sub000/pkg/utils"
)

// OperationKind is the state of the pending operation machine
type OperationKind int

const (
	OpNone OperationKind = iota
	OpAdd
	OpEdit
	OpDelete
	OpAddInterface
	OpEditInterface
)

func (k OperationKind) String() string {
	switch k {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpEdit:
		return "edit"
	case OpDelete:
		return "delete"
	case OpAddInterface:
		return "add_interface"
	case OpEditInterface:
		return "edit_interface"
	}
	return fmt.Sprintf("OperationKind(%d)", int(k))
}

// PendingOperation stages one add, edit or delete on a single item and
// either commits it to the configuration store or rolls it back. Only one
// operation can be outstanding at a time.
//
//	add            new configuration without hardware (bond, bridge, vlan, ...)
//	add_interface  first configuration of detected but unconfigured hardware
//	edit           change of an existing configuration
//	delete         removal of an existing configuration
//	edit_interface rename of a hardware backed device
type PendingOperation struct {
	table         *ItemTable
	store         interfaces.ConfigStore
	udev          *UdevRuleEngine
	session       *Session
	validate      *validator.Validate
	maxBondSlaves int
	logger        *logrus.Logger

	kind     OperationKind
	targetID int
	staged   *entities.InterfaceConfig
	newName  string
}

// NewPendingOperation creates a new PendingOperation in the none state
func NewPendingOperation(
	table *ItemTable,
	store interfaces.ConfigStore,
	udev *UdevRuleEngine,
	session *Session,
	maxBondSlaves int,
	logger *logrus.Logger,
) *PendingOperation {
	return &PendingOperation{
		table:         table,
		store:         store,
		udev:          udev,
		session:       session,
		validate:      validator.New(),
		maxBondSlaves: maxBondSlaves,
		logger:        logger,
		kind:          OpNone,
		targetID:      -1,
	}
}

// Kind returns the outstanding operation
func (o *PendingOperation) Kind() OperationKind {
	return o.kind
}

// TargetID returns the id of the item being operated on, or -1
func (o *PendingOperation) TargetID() int {
	return o.targetID
}

// Staged returns the configuration being edited. Callers modify it in place
// before Commit.
func (o *PendingOperation) Staged() *entities.InterfaceConfig {
	return o.staged
}

// BeginAdd creates a new hardware-less item with an empty configuration
func (o *PendingOperation) BeginAdd(name string) (int, error) {
	if err := o.ensureIdle(); err != nil {
		return -1, err
	}
	if err := utils.ValidateInterfaceName(name); err != nil {
		return -1, errors.NewValidationError("invalid device name", err)
	}
	if existing := o.table.FindByName(name); existing != nil {
		return -1, errors.NewValidationError(fmt.Sprintf("device %s already exists", name), nil)
	}

	o.staged = entities.NewInterfaceConfig(name)
	item := &entities.Item{Config: o.staged, Committed: false, Pending: true}
	id := o.table.Add(item)
	o.start(OpAdd, id)
	return id, nil
}

// BeginAddInterface stages the first configuration for detected hardware
func (o *PendingOperation) BeginAddInterface(id int) error {
	if err := o.ensureIdle(); err != nil {
		return err
	}
	item, err := o.target(id)
	if err != nil {
		return err
	}
	if !item.IsUnconfigured() {
		return errors.NewValidationError(fmt.Sprintf("item %d is not unconfigured hardware", id), nil)
	}
	if item.Hardware.DevName == "" {
		return errors.NewValidationError(fmt.Sprintf("item %d has no device name yet", id), nil)
	}

	o.staged = entities.NewInterfaceConfig(item.Hardware.DevName)
	item.Pending = true
	o.start(OpAddInterface, id)
	return nil
}

// BeginEdit stages a copy of an existing configuration
func (o *PendingOperation) BeginEdit(id int) error {
	if err := o.ensureIdle(); err != nil {
		return err
	}
	item, err := o.target(id)
	if err != nil {
		return err
	}
	if item.Config == nil {
		return errors.NewValidationError(fmt.Sprintf("item %d has no configuration to edit", id), nil)
	}

	o.staged = item.Config.Clone()
	item.Pending = true
	o.start(OpEdit, id)
	return nil
}

// BeginDelete marks a configuration for removal
func (o *PendingOperation) BeginDelete(id int) error {
	if err := o.ensureIdle(); err != nil {
		return err
	}
	item, err := o.target(id)
	if err != nil {
		return err
	}
	if item.Config == nil {
		return errors.NewValidationError(fmt.Sprintf("item %d has no configuration to delete", id), nil)
	}

	item.Pending = true
	o.start(OpDelete, id)
	return nil
}

// BeginEditInterface stages a rename of a hardware backed device
func (o *PendingOperation) BeginEditInterface(id int, newName string) error {
	if err := o.ensureIdle(); err != nil {
		return err
	}
	item, err := o.target(id)
	if err != nil {
		return err
	}
	if item.Hardware == nil {
		return errors.NewValidationError(fmt.Sprintf("item %d has no hardware to rename", id), nil)
	}
	if err := utils.ValidateInterfaceName(newName); err != nil {
		return errors.NewValidationError("invalid device name", err)
	}
	if other := o.table.FindByName(newName); other != nil && other.ID != id {
		return errors.NewValidationError(fmt.Sprintf("device name %s is already in use", newName), nil)
	}

	o.staged = item.Config.Clone()
	o.newName = newName
	item.Pending = true
	o.start(OpEditInterface, id)
	return nil
}

// Commit validates and persists the outstanding operation. On failure the
// operation stays outstanding so the caller can fix, retry or roll back.
func (o *PendingOperation) Commit(ctx context.Context) error {
	if o.kind == OpNone {
		return errors.NewValidationError("no operation to commit", nil)
	}
	item := o.table.Get(o.targetID)
	if item == nil {
		return errors.NewNotFoundError(fmt.Sprintf("item %d disappeared", o.targetID))
	}

	var err error
	switch o.kind {
	case OpAdd, OpEdit, OpAddInterface:
		err = o.commitConfig(ctx, item)
	case OpDelete:
		err = o.commitDelete(ctx, item)
	case OpEditInterface:
		err = o.commitRename(ctx, item)
	}
	if err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"operation": o.kind.String(),
			"item_id":   o.targetID,
		}).Warn("Commit failed")
		return err
	}

	o.session.MarkModified()
	o.logger.WithFields(logrus.Fields{
		"operation": o.kind.String(),
		"item_id":   o.targetID,
		"device":    item.Name(),
	}).Info("Operation committed")
	item.Pending = false
	o.reset()
	return nil
}

func (o *PendingOperation) commitConfig(ctx context.Context, item *entities.Item) error {
	switch o.kind {
	case OpEdit:
		o.staged.Name = item.Config.Name
	case OpAddInterface:
		o.staged.Name = item.Hardware.DevName
	}
	if err := o.validateConfig(o.staged); err != nil {
		return err
	}
	if err := o.store.Write(ctx, o.staged.Name, o.staged); err != nil {
		return errors.NewCommitFailedError(fmt.Sprintf("writing configuration %s failed", o.staged.Name), err)
	}

	item.Config = o.staged
	item.Committed = true
	return nil
}

func (o *PendingOperation) commitDelete(ctx context.Context, item *entities.Item) error {
	name := item.Config.Name
	if err := o.store.Delete(ctx, name); err != nil {
		return errors.NewCommitFailedError(fmt.Sprintf("deleting configuration %s failed", name), err)
	}

	if item.Hardware == nil {
		o.table.Remove(item.ID)
		return nil
	}
	item.Config = nil
	return nil
}

func (o *PendingOperation) commitRename(ctx context.Context, item *entities.Item) error {
	if o.staged != nil {
		oldName := o.staged.Name
		o.staged.Name = o.newName
		if err := o.validateConfig(o.staged); err != nil {
			o.staged.Name = oldName
			return err
		}
		if err := o.store.Write(ctx, o.newName, o.staged); err != nil {
			o.staged.Name = oldName
			return errors.NewCommitFailedError(fmt.Sprintf("writing configuration %s failed", o.newName), err)
		}
		if oldName != o.newName {
			if err := o.store.Delete(ctx, oldName); err != nil {
				if cleanupErr := o.store.Delete(ctx, o.newName); cleanupErr != nil {
					o.logger.WithError(cleanupErr).WithField("config", o.newName).Error("Failed to remove half renamed configuration")
				}
				o.staged.Name = oldName
				return errors.NewCommitFailedError(fmt.Sprintf("removing configuration %s failed", oldName), err)
			}
		}
	}

	if !o.udev.ReplaceField(item, entities.UdevKeyName, entities.UdevKeyName, o.newName) {
		o.logger.WithField("item_id", item.ID).Warn("Device has no udev identity, rename applies to configuration only")
	}
	if o.staged != nil {
		item.Config = o.staged
		item.Committed = true
	}
	return nil
}

// Rollback discards the outstanding operation. An item added in this
// session that was never committed is removed again.
func (o *PendingOperation) Rollback() {
	if o.kind == OpNone {
		return
	}
	if item := o.table.Get(o.targetID); item != nil {
		item.Pending = false
		if o.kind == OpAdd && !item.Committed && item.Hardware == nil {
			o.table.Remove(item.ID)
		}
	}

	o.logger.WithFields(logrus.Fields{
		"operation": o.kind.String(),
		"item_id":   o.targetID,
	}).Debug("Operation rolled back")
	o.reset()
}

// validateConfig runs the struct rules and the class specific checks
func (o *PendingOperation) validateConfig(cfg *entities.InterfaceConfig) error {
	var problems []string

	if err := o.validate.Struct(cfg); err != nil {
		var fieldErrors validator.ValidationErrors
		if stderrors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				problems = append(problems, fmt.Sprintf("%s: %s", fe.Namespace(), validationMessage(fe)))
			}
		} else {
			return errors.NewValidationError("configuration validation failed", err)
		}
	}

	if cfg.Bond != nil {
		seen := map[string]bool{}
		for slot, slave := range cfg.Bond.Slaves {
			if slot < 0 || slot >= o.maxBondSlaves {
				problems = append(problems, fmt.Sprintf("bond slave slot %d out of range 0..%d", slot, o.maxBondSlaves-1))
			}
			if slave == "" {
				continue
			}
			if slave == cfg.Name {
				problems = append(problems, "bond cannot enslave itself")
			}
			if seen[slave] {
				problems = append(problems, fmt.Sprintf("bond slave %s listed twice", slave))
			}
			seen[slave] = true
		}
	}

	if cfg.Wireless != nil {
		mode := cfg.Wireless.Mode
		if (mode == "Ad-hoc" || mode == "Master") && cfg.Wireless.ESSID == "" {
			problems = append(problems, fmt.Sprintf("wireless mode %s requires an ESSID", mode))
		}
	}

	if cfg.Vlan != nil {
		if id, err := strconv.Atoi(cfg.Vlan.ID); err == nil && (id < 0 || id > 4094) {
			problems = append(problems, fmt.Sprintf("vlan id %d out of range 0..4094", id))
		}
		if cfg.Vlan.EtherDevice == cfg.Name {
			problems = append(problems, "vlan cannot use itself as ether device")
		}
	}

	if len(problems) > 0 {
		return errors.NewValidationError(
			fmt.Sprintf("configuration %s is invalid", cfg.Name),
			stderrors.New(strings.Join(problems, "; ")),
		)
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "numeric":
		return "must be numeric"
	case "cidr|ip":
		return "must be an IP address or CIDR"
	case "ipv4":
		return "must be an IPv4 address"
	case "mac":
		return "must be a MAC address"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

func (o *PendingOperation) ensureIdle() error {
	if o.kind != OpNone {
		return errors.NewOperationInProgressError(
			fmt.Sprintf("%s on item %d is still outstanding", o.kind, o.targetID),
		)
	}
	return nil
}

func (o *PendingOperation) target(id int) (*entities.Item, error) {
	item := o.table.Get(id)
	if item == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("item %d not found", id))
	}
	return item, nil
}

func (o *PendingOperation) start(kind OperationKind, id int) {
	o.kind = kind
	o.targetID = id
	o.logger.WithFields(logrus.Fields{
		"operation": kind.String(),
		"item_id":   id,
	}).Debug("Operation started")
}

func (o *PendingOperation) reset() {
	o.kind = OpNone
	o.targetID = -1
	o.staged = nil
	o.newName = ""
}
