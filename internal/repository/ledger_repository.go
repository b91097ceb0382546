package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigledger/internal/model"
)

// ErrTxConflict reports that a transaction kept colliding with concurrent
// updates and all retry attempts were exhausted.
var ErrTxConflict = errors.New("transaction conflict")

// LedgerTx is the unit-of-work surface for balance mutations. Every row
// returned by a ForUpdate method stays locked until the enclosing
// transaction commits or rolls back.
type LedgerTx interface {
	ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	JobForUpdate(ctx context.Context, id uuid.UUID) (*model.Job, error)
	SumUnpaidClientJobs(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
	AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error
}

type LedgerRepository struct {
	db      *gorm.DB
	retries int
}

func NewLedgerRepository(db *gorm.DB, retries int) *LedgerRepository {
	if retries < 1 {
		retries = 1
	}
	return &LedgerRepository{db: db, retries: retries}
}

// InTx runs fn inside one database transaction. Serialization and
// deadlock failures are retried with a fresh transaction; business
// errors returned by fn roll back and surface unchanged.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(LedgerTx) error) error {
	var err error
	for attempt := 0; attempt < r.retries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&ledgerTx{tx: tx})
		})
		if err == nil || !retryableTxError(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTxConflict, err)
}

func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := t.tx.Raw(`
		SELECT id, first_name, last_name, profession, role, balance, created_at
		FROM profiles
		WHERE id = ?
		FOR UPDATE
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (t *ledgerTx) ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := t.tx.Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (t *ledgerTx) JobForUpdate(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := t.tx.Raw(`
		SELECT id, contract_id, description, price, payment_date, created_at
		FROM jobs
		WHERE id = ?
		FOR UPDATE
	`, id).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (t *ledgerTx) SumUnpaidClientJobs(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.Raw(`
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND c.status = 'in_progress'
			AND j.payment_date IS NULL
	`, clientID).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (t *ledgerTx) AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := t.tx.Exec(`
		UPDATE profiles
		SET balance = balance + ?
		WHERE id = ?
	`, delta, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *ledgerTx) MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	result := t.tx.Exec(`
		UPDATE jobs
		SET payment_date = ?
		WHERE id = ?
			AND payment_date IS NULL
	`, at, jobID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
