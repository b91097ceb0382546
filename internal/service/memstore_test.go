package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigledger/internal/model"
	"github.com/nurpe/gigledger/internal/repository"
)

// memStore is an in-memory stand-in for the gorm repositories. A single
// mutex serializes InTx closures, matching the row-lock serialization the
// real store provides, and writes are staged so a closure that returns an
// error leaves no trace.
type memStore struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*model.Profile
	contracts map[uuid.UUID]*model.Contract
	jobs      map[uuid.UUID]*model.Job
}

func newMemStore() *memStore {
	return &memStore{
		profiles:  make(map[uuid.UUID]*model.Profile),
		contracts: make(map[uuid.UUID]*model.Contract),
		jobs:      make(map[uuid.UUID]*model.Job),
	}
}

func (s *memStore) addProfile(role model.ProfileRole, name, profession string, balance decimal.Decimal) uuid.UUID {
	id := uuid.New()
	s.profiles[id] = &model.Profile{
		ID:         id,
		FirstName:  name,
		LastName:   string(role),
		Profession: profession,
		Role:       role,
		Balance:    balance,
		CreatedAt:  time.Now(),
	}
	return id
}

func (s *memStore) addContract(clientID, contractorID uuid.UUID, status model.ContractStatus) uuid.UUID {
	id := uuid.New()
	s.contracts[id] = &model.Contract{
		ID:           id,
		ClientID:     clientID,
		ContractorID: contractorID,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	return id
}

func (s *memStore) addJob(contractID uuid.UUID, price decimal.Decimal, paidAt *time.Time) uuid.UUID {
	id := uuid.New()
	s.jobs[id] = &model.Job{
		ID:          id,
		ContractID:  contractID,
		Price:       price,
		PaymentDate: paidAt,
		CreatedAt:   time.Now(),
	}
	return id
}

func (s *memStore) balance(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id].Balance
}

func (s *memStore) totalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, p := range s.profiles {
		total = total.Add(p.Balance)
	}
	return total
}

// ContractStore

func (s *memStore) GetForProfile(ctx context.Context, contractID, profileID uuid.UUID) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.contracts[contractID]
	if !ok || !contract.HasParticipant(profileID) {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (s *memStore) ListActive(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var contracts []model.Contract
	for _, contract := range s.contracts {
		if contract.HasParticipant(profileID) && contract.Status != model.ContractStatusTerminated {
			contracts = append(contracts, *contract)
		}
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID.String() < contracts[j].ID.String() })
	return contracts, nil
}

// JobStore

func (s *memStore) ListUnpaid(ctx context.Context, profileID uuid.UUID, roles model.RoleFilter) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []model.Job
	for _, job := range s.jobs {
		if job.Paid() {
			continue
		}
		contract := s.contracts[job.ContractID]
		if contract == nil || contract.Status != model.ContractStatusInProgress {
			continue
		}
		matched := roles.Has(model.FilterClient) && contract.ClientID == profileID ||
			roles.Has(model.FilterContractor) && contract.ContractorID == profileID
		if !matched {
			continue
		}
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID.String() < jobs[j].ID.String() })
	return jobs, nil
}

func (s *memStore) GetReceipt(ctx context.Context, jobID, profileID uuid.UUID) (*model.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || !job.Paid() {
		return nil, gorm.ErrRecordNotFound
	}
	contract := s.contracts[job.ContractID]
	if contract == nil || !contract.HasParticipant(profileID) {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Receipt{
		Job:        *job,
		Contract:   *contract,
		Client:     *s.profiles[contract.ClientID],
		Contractor: *s.profiles[contract.ContractorID],
	}, nil
}

// LedgerStore

func (s *memStore) InTx(ctx context.Context, fn func(repository.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:         s,
		balanceDeltas: make(map[uuid.UUID]decimal.Decimal),
		paid:          make(map[uuid.UUID]time.Time),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, delta := range tx.balanceDeltas {
		s.profiles[id].Balance = s.profiles[id].Balance.Add(delta)
	}
	for id, at := range tx.paid {
		paidAt := at
		s.jobs[id].PaymentDate = &paidAt
	}
	return nil
}

// memTx stages writes; InTx applies them only after fn succeeds.
type memTx struct {
	store         *memStore
	balanceDeltas map[uuid.UUID]decimal.Decimal
	paid          map[uuid.UUID]time.Time
}

func (t *memTx) ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, ok := t.store.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *profile
	copied.Balance = copied.Balance.Add(t.balanceDeltas[id])
	return &copied, nil
}

func (t *memTx) ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, ok := t.store.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (t *memTx) JobForUpdate(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := t.store.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *job
	if at, ok := t.paid[id]; ok {
		paidAt := at
		copied.PaymentDate = &paidAt
	}
	return &copied, nil
}

func (t *memTx) SumUnpaidClientJobs(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, job := range t.store.jobs {
		if job.Paid() {
			continue
		}
		if _, settled := t.paid[job.ID]; settled {
			continue
		}
		contract := t.store.contracts[job.ContractID]
		if contract == nil || contract.Status != model.ContractStatusInProgress || contract.ClientID != clientID {
			continue
		}
		total = total.Add(job.Price)
	}
	return total, nil
}

func (t *memTx) AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	if _, ok := t.store.profiles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	t.balanceDeltas[id] = t.balanceDeltas[id].Add(delta)
	return nil
}

func (t *memTx) MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	job, ok := t.store.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if job.Paid() {
		return gorm.ErrRecordNotFound
	}
	if _, settled := t.paid[jobID]; settled {
		return gorm.ErrRecordNotFound
	}
	t.paid[jobID] = at
	return nil
}

// ReportStore

func (s *memStore) BestProfession(ctx context.Context, from, toExclusive time.Time) (*model.ProfessionEarnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, job := range s.jobs {
		if !s.settledInWindow(job, from, toExclusive) {
			continue
		}
		contract := s.contracts[job.ContractID]
		profession := s.profiles[contract.ContractorID].Profession
		totals[profession] = totals[profession].Add(job.Price)
	}
	if len(totals) == 0 {
		return nil, nil
	}

	var rows []model.ProfessionEarnings
	for profession, total := range totals {
		rows = append(rows, model.ProfessionEarnings{Profession: profession, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Profession < rows[j].Profession
	})
	return &rows[0], nil
}

func (s *memStore) BestClients(ctx context.Context, from, toExclusive time.Time, limit int) ([]model.ClientSpending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, job := range s.jobs {
		if !s.settledInWindow(job, from, toExclusive) {
			continue
		}
		clientID := s.contracts[job.ContractID].ClientID
		totals[clientID] = totals[clientID].Add(job.Price)
	}

	var rows []model.ClientSpending
	for clientID, total := range totals {
		rows = append(rows, model.ClientSpending{
			ID:       clientID,
			FullName: s.profiles[clientID].FullName(),
			Paid:     total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Paid.Equal(rows[j].Paid) {
			return rows[i].Paid.GreaterThan(rows[j].Paid)
		}
		if rows[i].FullName != rows[j].FullName {
			return rows[i].FullName < rows[j].FullName
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *memStore) settledInWindow(job *model.Job, from, toExclusive time.Time) bool {
	if !job.Paid() {
		return false
	}
	at := *job.PaymentDate
	return !at.Before(from) && at.Before(toExclusive)
}
