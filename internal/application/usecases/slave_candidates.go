package usecases

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/services"
)

// SlaveCandidatesOutput lists the devices that may join a master
type SlaveCandidatesOutput struct {
	Master     string
	MasterType entities.DeviceType
	Candidates []string
}

// SlaveCandidatesUseCase answers which devices may be enslaved into a bond
// or attached as ports to a bridge
type SlaveCandidatesUseCase struct {
	table       *services.ItemTable
	eligibility *services.SlaveEligibility
	logger      *logrus.Logger
}

// NewSlaveCandidatesUseCase는 새로운 SlaveCandidatesUseCase를 생성합니다
func NewSlaveCandidatesUseCase(
	table *services.ItemTable,
	eligibility *services.SlaveEligibility,
	logger *logrus.Logger,
) *SlaveCandidatesUseCase {
	return &SlaveCandidatesUseCase{
		table:       table,
		eligibility: eligibility,
		logger:      logger,
	}
}

// Execute lists candidates for master, which must be a bond or a bridge
func (uc *SlaveCandidatesUseCase) Execute(ctx context.Context, master string) (*SlaveCandidatesOutput, error) {
	if err := uc.table.Rebuild(ctx); err != nil {
		return nil, err
	}
	if err := uc.eligibility.Refresh(ctx); err != nil {
		return nil, err
	}

	item := uc.table.FindByName(master)
	if item == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("master %s not found", master))
	}

	var validator services.SlaveValidator
	switch item.Type() {
	case entities.TypeBond:
		validator = uc.eligibility.IsBondable
	case entities.TypeBridge:
		validator = uc.eligibility.IsBridgeable
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("%s is neither a bond nor a bridge", master), nil)
	}

	output := &SlaveCandidatesOutput{Master: master, MasterType: item.Type()}
	for _, id := range uc.eligibility.Candidates(item.ID, validator) {
		output.Candidates = append(output.Candidates, uc.table.Get(id).Name())
	}

	uc.logger.WithFields(logrus.Fields{
		"master":     master,
		"candidates": len(output.Candidates),
	}).Debug("Slave candidates computed")
	return output, nil
}
