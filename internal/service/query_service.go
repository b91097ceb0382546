package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/gigledger/internal/model"
)

// ReceiptGenerator renders a settlement receipt document.
type ReceiptGenerator interface {
	Generate(receipt model.Receipt) ([]byte, error)
}

// QueryService is the read-only view over contracts and jobs. Every
// operation is scoped to the caller's profile; a contract the caller is
// not part of is indistinguishable from one that does not exist.
type QueryService struct {
	contracts ContractStore
	jobs      JobStore
	receipts  ReceiptGenerator
}

func NewQueryService(contracts ContractStore, jobs JobStore, receipts ReceiptGenerator) *QueryService {
	return &QueryService{
		contracts: contracts,
		jobs:      jobs,
		receipts:  receipts,
	}
}

func (s *QueryService) GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.GetForProfile(ctx, contractID, callerID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return contract, nil
}

func (s *QueryService) ListActiveContracts(ctx context.Context, callerID uuid.UUID) ([]model.Contract, error) {
	contracts, err := s.contracts.ListActive(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	return contracts, nil
}

func (s *QueryService) ListUnpaidJobs(ctx context.Context, callerID uuid.UUID, roles model.RoleFilter) ([]model.Job, error) {
	if roles == 0 {
		roles = model.FilterBoth
	}
	if roles&^model.FilterBoth != 0 {
		return nil, fmt.Errorf("%w: unknown role filter", ErrInvalidInput)
	}
	jobs, err := s.jobs.ListUnpaid(ctx, callerID, roles)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}

// JobReceipt renders the PDF receipt for a settled job the caller took
// part in.
func (s *QueryService) JobReceipt(ctx context.Context, jobID, callerID uuid.UUID) (*ExportResult, error) {
	receipt, err := s.jobs.GetReceipt(ctx, jobID, callerID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	content, err := s.receipts.Generate(*receipt)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", receipt.Job.ID),
		Content:  content,
	}, nil
}
