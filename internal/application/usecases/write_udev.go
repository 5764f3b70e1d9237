package usecases

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

// WriteUdevOutput은 udev 규칙 저장 결과입니다
type WriteUdevOutput struct {
	Renamed         []string
	RestartRequired bool
}

// WriteUdevUseCase persists the udev rules of the current item table
type WriteUdevUseCase struct {
	table   *services.ItemTable
	engine  *services.UdevRuleEngine
	session *services.Session
	logger  *logrus.Logger
}

// NewWriteUdevUseCase는 새로운 WriteUdevUseCase를 생성합니다
func NewWriteUdevUseCase(
	table *services.ItemTable,
	engine *services.UdevRuleEngine,
	session *services.Session,
	logger *logrus.Logger,
) *WriteUdevUseCase {
	return &WriteUdevUseCase{
		table:   table,
		engine:  engine,
		session: session,
		logger:  logger,
	}
}

// Execute detects renames, writes the rule set and triggers udev
func (uc *WriteUdevUseCase) Execute(ctx context.Context) (*WriteUdevOutput, error) {
	items := uc.table.Items()
	for _, item := range items {
		_, malformed := item.Udev.Field(entities.UdevKeyName)
		for range malformed {
			metrics.RecordMalformedClause()
		}
	}

	renamed, err := uc.engine.DetectRenamesAndPersist(ctx, items)
	if err != nil {
		metrics.RecordUdevWrite("failed", len(renamed))
		return nil, err
	}
	metrics.RecordUdevWrite("success", len(renamed))

	if len(renamed) > 0 {
		uc.logger.WithField("renamed", renamed).Warn("Devices will be renamed, network restart required")
	}
	return &WriteUdevOutput{
		Renamed:         renamed,
		RestartRequired: uc.session.RestartRequired(),
	}, nil
}
