package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/gigledger/internal/model"
	"github.com/nurpe/gigledger/internal/repository"
)

type ContractStore interface {
	GetForProfile(ctx context.Context, contractID, profileID uuid.UUID) (*model.Contract, error)
	ListActive(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error)
}

type JobStore interface {
	ListUnpaid(ctx context.Context, profileID uuid.UUID, roles model.RoleFilter) ([]model.Job, error)
	GetReceipt(ctx context.Context, jobID, profileID uuid.UUID) (*model.Receipt, error)
}

// LedgerStore opens a serializable unit of work for balance mutations.
// Implementations retry transient conflicts before giving up with
// repository.ErrTxConflict.
type LedgerStore interface {
	InTx(ctx context.Context, fn func(repository.LedgerTx) error) error
}

type ReportStore interface {
	BestProfession(ctx context.Context, from, toExclusive time.Time) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, from, toExclusive time.Time, limit int) ([]model.ClientSpending, error)
}
