package usecases

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

// virtualTypes can be created from a profile without matching hardware
var virtualTypes = []entities.DeviceType{
	entities.TypeBond,
	entities.TypeBridge,
	entities.TypeVlan,
	entities.TypeTun,
	entities.TypeTap,
}

// AutoinstallResult는 프로필 인터페이스 하나의 처리 결과입니다
type AutoinstallResult struct {
	Device   string
	Name     string
	Hardware string
	Rule     services.MatchRule
	Err      error
}

// AutoinstallOutput은 autoinstall 유스케이스의 출력 결과입니다
type AutoinstallOutput struct {
	Results   []AutoinstallResult
	Matched   int
	Virtual   int
	Unmatched int
	Udev      *WriteUdevOutput
}

// AutoinstallUseCase applies an autoinstall profile: every profile interface
// is matched to detected hardware, its configuration is committed and the
// device name is pinned by a udev rule
type AutoinstallUseCase struct {
	table     *services.ItemTable
	operation *services.PendingOperation
	engine    *services.UdevRuleEngine
	writeUdev *WriteUdevUseCase
	logger    *logrus.Logger
}

// NewAutoinstallUseCase는 새로운 AutoinstallUseCase를 생성합니다
func NewAutoinstallUseCase(
	table *services.ItemTable,
	operation *services.PendingOperation,
	engine *services.UdevRuleEngine,
	writeUdev *WriteUdevUseCase,
	logger *logrus.Logger,
) *AutoinstallUseCase {
	return &AutoinstallUseCase{
		table:     table,
		operation: operation,
		engine:    engine,
		writeUdev: writeUdev,
		logger:    logger,
	}
}

// Execute applies profile. Interfaces that cannot be matched are reported
// in the output and do not stop the run.
func (uc *AutoinstallUseCase) Execute(ctx context.Context, profile *entities.Profile) (*AutoinstallOutput, error) {
	if err := uc.table.Rebuild(ctx); err != nil {
		return nil, err
	}

	hardware := lo.FilterMap(uc.table.Items(), func(item *entities.Item, _ int) (entities.HardwareDescriptor, bool) {
		if item.Hardware == nil {
			return entities.HardwareDescriptor{}, false
		}
		return *item.Hardware, true
	})
	matcher := services.NewAutoMatcher(hardware, profile, uc.table.ConfigNames(), uc.logger)

	output := &AutoinstallOutput{}
	for _, pi := range profile.Interfaces {
		result := uc.apply(ctx, matcher, pi)
		switch {
		case result.Err != nil:
			output.Unmatched++
			uc.logger.WithError(result.Err).WithField("device", pi.Device).Warn("Profile interface not applied")
		case result.Hardware == "":
			output.Virtual++
		default:
			output.Matched++
		}
		output.Results = append(output.Results, result)
	}

	if output.Matched > 0 || output.Virtual > 0 {
		udev, err := uc.writeUdev.Execute(ctx)
		if err != nil {
			return output, err
		}
		output.Udev = udev
	}

	uc.logger.WithFields(logrus.Fields{
		"matched":   output.Matched,
		"virtual":   output.Virtual,
		"unmatched": output.Unmatched,
	}).Info("Autoinstall profile applied")
	return output, nil
}

func (uc *AutoinstallUseCase) apply(ctx context.Context, matcher *services.AutoMatcher, pi entities.ProfileInterface) AutoinstallResult {
	result := AutoinstallResult{Device: pi.Device}
	identity := pi.Identity()

	// 가상 장치는 하드웨어 매칭 대상이 아님
	if identity.Kind == entities.IdentityByName && lo.Contains(virtualTypes, identity.Type) {
		result.Name = pi.Device
		result.Err = uc.addVirtual(ctx, pi)
		return result
	}

	hw, rule := matcher.Match(pi)
	result.Rule = rule
	metrics.RecordAutoinstallMatch(string(rule))

	if hw == nil || matcher.IsClaimed(hw) {
		result.Err = errors.NewUnmatchableProfileInterfaceError(
			fmt.Sprintf("no hardware matches profile interface %s", pi.Device),
		)
		return result
	}

	item, ok := lo.Find(uc.table.Items(), func(item *entities.Item) bool {
		return item.Hardware != nil && item.Hardware.DetectionIndex == hw.DetectionIndex
	})
	if !ok {
		result.Err = errors.NewNotFoundError(fmt.Sprintf("matched hardware %s is not in the item table", hw.DevName))
		return result
	}

	result.Hardware = hw.DevName
	result.Name = hw.DevName
	if identity.Kind == entities.IdentityByName {
		result.Name = pi.Device
	}

	if err := uc.configure(ctx, item, pi); err != nil {
		result.Err = err
		return result
	}

	if result.Name != hw.DevName {
		if err := uc.run(ctx, func() error { return uc.operation.BeginEditInterface(item.ID, result.Name) }); err != nil {
			result.Err = err
			return result
		}
	} else if !uc.engine.ReplaceField(item, entities.UdevKeyName, entities.UdevKeyName, result.Name) {
		uc.logger.WithField("interface", hw.DevName).Debug("No udev identity to pin")
	}

	matcher.MarkConfigured(hw)
	uc.logger.WithFields(logrus.Fields{
		"device":   pi.Device,
		"hardware": hw.DevName,
		"name":     result.Name,
		"rule":     string(rule),
	}).Info("Profile interface matched")
	return result
}

// configure stages the profile settings on the item and commits them
func (uc *AutoinstallUseCase) configure(ctx context.Context, item *entities.Item, pi entities.ProfileInterface) error {
	begin := func() error { return uc.operation.BeginEdit(item.ID) }
	if item.Config == nil {
		begin = func() error { return uc.operation.BeginAddInterface(item.ID) }
	}
	return uc.run(ctx, begin, func(staged *entities.InterfaceConfig) {
		*staged = *pi.ToConfig(staged.Name)
	})
}

func (uc *AutoinstallUseCase) addVirtual(ctx context.Context, pi entities.ProfileInterface) error {
	return uc.run(ctx, func() error {
		_, err := uc.operation.BeginAdd(pi.Device)
		return err
	}, func(staged *entities.InterfaceConfig) {
		*staged = *pi.ToConfig(staged.Name)
	})
}

// run begins an operation, lets edit adjust the staged configuration and
// commits, rolling back on failure
func (uc *AutoinstallUseCase) run(ctx context.Context, begin func() error, edits ...func(*entities.InterfaceConfig)) error {
	if err := begin(); err != nil {
		return err
	}
	kind := uc.operation.Kind().String()

	if staged := uc.operation.Staged(); staged != nil {
		for _, edit := range edits {
			edit(staged)
		}
	}

	if err := uc.operation.Commit(ctx); err != nil {
		metrics.RecordCommit(kind, "failed")
		uc.operation.Rollback()
		return err
	}
	metrics.RecordCommit(kind, "success")
	return nil
}
