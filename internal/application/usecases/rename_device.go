package usecases

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

// RenameDeviceInput은 장치 이름 변경 입력입니다
type RenameDeviceInput struct {
	Current string
	NewName string
}

// RenameDeviceUseCase renames a hardware backed device by moving its
// configuration and rewriting the NAME of its udev rule
type RenameDeviceUseCase struct {
	table     *services.ItemTable
	operation *services.PendingOperation
	writeUdev *WriteUdevUseCase
	logger    *logrus.Logger
}

// NewRenameDeviceUseCase는 새로운 RenameDeviceUseCase를 생성합니다
func NewRenameDeviceUseCase(
	table *services.ItemTable,
	operation *services.PendingOperation,
	writeUdev *WriteUdevUseCase,
	logger *logrus.Logger,
) *RenameDeviceUseCase {
	return &RenameDeviceUseCase{
		table:     table,
		operation: operation,
		writeUdev: writeUdev,
		logger:    logger,
	}
}

// Execute renames input.Current to input.NewName and persists udev rules
func (uc *RenameDeviceUseCase) Execute(ctx context.Context, input RenameDeviceInput) (*WriteUdevOutput, error) {
	if err := uc.table.Rebuild(ctx); err != nil {
		return nil, err
	}

	item := uc.table.FindByName(input.Current)
	if item == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device %s not found", input.Current))
	}

	if err := uc.operation.BeginEditInterface(item.ID, input.NewName); err != nil {
		return nil, err
	}
	if err := uc.operation.Commit(ctx); err != nil {
		metrics.RecordCommit(services.OpEditInterface.String(), "failed")
		uc.operation.Rollback()
		return nil, err
	}
	metrics.RecordCommit(services.OpEditInterface.String(), "success")

	uc.logger.WithFields(logrus.Fields{
		"from": input.Current,
		"to":   input.NewName,
	}).Info("Device renamed")
	return uc.writeUdev.Execute(ctx)
}
