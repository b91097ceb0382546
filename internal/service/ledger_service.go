package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigledger/internal/config"
	"github.com/nurpe/gigledger/internal/model"
	"github.com/nurpe/gigledger/internal/repository"
)

// LedgerService is the only component that mutates balances or job-paid
// state. Both operations run inside a single storage transaction with
// row locks on everything they touch.
type LedgerService struct {
	store  LedgerStore
	capPct decimal.Decimal
	log    zerolog.Logger
}

func NewLedgerService(store LedgerStore, cfg *config.Config, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		capPct: decimal.NewFromFloat(cfg.Ledger.DepositCapPct),
		log:    log,
	}
}

// Deposit adds amount to a client's balance. The amount is capped at the
// configured share of the client's outstanding unpaid job total, computed
// inside the same transaction that applies the credit.
func (s *LedgerService) Deposit(ctx context.Context, targetID uuid.UUID, amount decimal.Decimal, callerID uuid.UUID) (*model.Profile, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}

	var updated *model.Profile
	err := s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		profile, err := tx.ProfileForUpdate(ctx, targetID)
		if err != nil {
			return err
		}
		if profile.Role != model.RoleClient {
			return fmt.Errorf("%w: deposits are only allowed for client profiles", ErrInvalidInput)
		}

		outstanding, err := tx.SumUnpaidClientJobs(ctx, targetID)
		if err != nil {
			return err
		}
		maxAllowed := outstanding.Mul(s.capPct)
		if amount.GreaterThan(maxAllowed) {
			s.log.Info().
				Str("profile_id", targetID.String()).
				Str("amount", amount.String()).
				Str("max_allowed", maxAllowed.String()).
				Msg("deposit rejected by cap")
			return fmt.Errorf("%w: amount %s is greater than allowed max %s", ErrCapExceeded, amount, maxAllowed)
		}

		if err := tx.AddToBalance(ctx, targetID, amount); err != nil {
			return err
		}
		profile.Balance = profile.Balance.Add(amount)
		updated = profile
		return nil
	})
	if err != nil {
		return nil, mapStorageError(err)
	}
	return updated, nil
}

// PayJob settles one job: debit the client, credit the contractor and
// stamp the payment date, all in one transaction. Only the contract's
// client may pay, and a job settles at most once.
func (s *LedgerService) PayJob(ctx context.Context, jobID, callerID uuid.UUID) (*model.Job, error) {
	var settled *model.Job
	err := s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		job, err := tx.JobForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		contract, err := tx.ContractByID(ctx, job.ContractID)
		if err != nil {
			return err
		}
		if contract.ClientID != callerID {
			// non-participants must not learn the job exists
			return gorm.ErrRecordNotFound
		}
		if contract.Status != model.ContractStatusInProgress {
			return fmt.Errorf("%w: contract is not in progress", ErrInvalidInput)
		}
		if job.Paid() {
			return ErrAlreadySettled
		}

		// lock both parties in a fixed order so concurrent settlements
		// against overlapping profiles cannot deadlock
		var client, contractor *model.Profile
		for _, id := range lockOrder(contract.ClientID, contract.ContractorID) {
			profile, err := tx.ProfileForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if id == contract.ClientID {
				client = profile
			} else {
				contractor = profile
			}
		}

		if client.Balance.LessThan(job.Price) {
			return fmt.Errorf("%w: balance %s is below job price %s", ErrInsufficientFunds, client.Balance, job.Price)
		}

		if err := tx.AddToBalance(ctx, client.ID, job.Price.Neg()); err != nil {
			return err
		}
		if err := tx.AddToBalance(ctx, contractor.ID, job.Price); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.MarkJobPaid(ctx, job.ID, now); err != nil {
			return err
		}

		job.PaymentDate = &now
		settled = job
		return nil
	})
	if err != nil {
		return nil, mapStorageError(err)
	}
	s.log.Info().
		Str("job_id", settled.ID.String()).
		Str("price", settled.Price.String()).
		Msg("job settled")
	return settled, nil
}

func lockOrder(a, b uuid.UUID) []uuid.UUID {
	if a == b {
		return []uuid.UUID{a}
	}
	if bytes.Compare(a[:], b[:]) > 0 {
		return []uuid.UUID{b, a}
	}
	return []uuid.UUID{a, b}
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrTxConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
