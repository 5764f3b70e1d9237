package usecases

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

// Item states reported by the reconcile summary
const (
	StateConfigured   = "configured"
	StateUnconfigured = "unconfigured"
	StateVirtual      = "virtual"
)

// ItemSummary는 재조정된 아이템 하나의 요약입니다
type ItemSummary struct {
	ID           int
	Name         string
	Type         entities.DeviceType
	State        string
	MAC          string
	Driver       string
	BusID        string
	BootProto    string
	StartMode    string
	UdevName     string
	BondMaster   string
	BridgeMaster string
}

// ReconcileOutput은 재조정 유스케이스의 출력 결과입니다
type ReconcileOutput struct {
	Items        []ItemSummary
	Configured   int
	Unconfigured int
	Virtual      int
}

// ReconcileUseCase는 하드웨어와 설정을 다시 읽어 아이템 테이블을 재구성합니다
type ReconcileUseCase struct {
	table       *services.ItemTable
	eligibility *services.SlaveEligibility
	udev        *services.UdevRuleEngine
	logger      *logrus.Logger
}

// NewReconcileUseCase는 새로운 ReconcileUseCase를 생성합니다
func NewReconcileUseCase(
	table *services.ItemTable,
	eligibility *services.SlaveEligibility,
	udev *services.UdevRuleEngine,
	logger *logrus.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		table:       table,
		eligibility: eligibility,
		udev:        udev,
		logger:      logger,
	}
}

// Execute rebuilds the table and the slave indices and summarizes the result
func (uc *ReconcileUseCase) Execute(ctx context.Context) (*ReconcileOutput, error) {
	start := time.Now()
	if err := uc.table.Rebuild(ctx); err != nil {
		metrics.RecordRebuild("failed", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordRebuild("success", time.Since(start).Seconds())

	if err := uc.eligibility.Refresh(ctx); err != nil {
		uc.logger.WithError(err).Warn("Failed to rebuild bond and bridge indices")
	}

	output := &ReconcileOutput{}
	for _, item := range uc.table.Items() {
		summary := uc.summarize(item)
		switch summary.State {
		case StateConfigured:
			output.Configured++
		case StateUnconfigured:
			output.Unconfigured++
		case StateVirtual:
			output.Virtual++
		}
		output.Items = append(output.Items, summary)
	}
	metrics.SetItemCounts(output.Configured, output.Unconfigured, output.Virtual)

	uc.logger.WithFields(logrus.Fields{
		"configured":   output.Configured,
		"unconfigured": output.Unconfigured,
		"virtual":      output.Virtual,
	}).Info("Reconcile completed")
	return output, nil
}

func (uc *ReconcileUseCase) summarize(item *entities.Item) ItemSummary {
	summary := ItemSummary{
		ID:        item.ID,
		Name:      item.Name(),
		Type:      item.Type(),
		StartMode: item.StartMode(),
		UdevName:  uc.udev.GetField(item, entities.UdevKeyName),
	}

	switch {
	case item.IsVirtual():
		summary.State = StateVirtual
	case item.IsUnconfigured():
		summary.State = StateUnconfigured
	default:
		summary.State = StateConfigured
	}

	if hw := item.Hardware; hw != nil {
		summary.MAC = hw.MAC
		summary.Driver = hw.Driver
		summary.BusID = hw.BusID
	}
	if item.Config != nil {
		summary.BootProto = item.Config.BootProto
	}
	summary.BondMaster, _ = uc.eligibility.BondMaster(summary.Name)
	summary.BridgeMaster, _ = uc.eligibility.BridgeMaster(summary.Name)
	return summary
}
