package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/gigledger/internal/model"
)

type stubReceiptGenerator struct{}

func (stubReceiptGenerator) Generate(receipt model.Receipt) ([]byte, error) {
	return []byte("%PDF-stub " + receipt.Job.ID.String()), nil
}

func newQueries(store *memStore) *QueryService {
	return NewQueryService(store, store, stubReceiptGenerator{})
}

func TestGetContractScoping(t *testing.T) {
	store := newMemStore()
	client := store.addProfile(model.RoleClient, "Ann", "", dec("0"))
	contractor := store.addProfile(model.RoleContractor, "Kim", "Programmer", dec("0"))
	stranger := store.addProfile(model.RoleClient, "Eve", "", dec("0"))
	contract := store.addContract(client, contractor, model.ContractStatusNew)

	queries := newQueries(store)
	ctx := context.Background()

	for _, caller := range []uuid.UUID{client, contractor} {
		got, err := queries.GetContract(ctx, contract, caller)
		if err != nil {
			t.Fatalf("participant %s: %v", caller, err)
		}
		if got.ID != contract {
			t.Fatalf("got contract %s want %s", got.ID, contract)
		}
	}

	// a contract the caller is not part of must look absent
	if _, err := queries.GetContract(ctx, contract, stranger); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger: want ErrNotFound, got %v", err)
	}
	if _, err := queries.GetContract(ctx, uuid.New(), client); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing contract: want ErrNotFound, got %v", err)
	}
}

func TestListActiveContractsExcludesTerminated(t *testing.T) {
	store := newMemStore()
	client := store.addProfile(model.RoleClient, "Ann", "", dec("0"))
	contractor := store.addProfile(model.RoleContractor, "Kim", "Programmer", dec("0"))
	active := store.addContract(client, contractor, model.ContractStatusInProgress)
	fresh := store.addContract(client, contractor, model.ContractStatusNew)
	store.addContract(client, contractor, model.ContractStatusTerminated)

	queries := newQueries(store)

	contracts, err := queries.ListActiveContracts(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	if len(contracts) != 2 {
		t.Fatalf("len=%d want=2", len(contracts))
	}
	found := map[uuid.UUID]bool{}
	for _, contract := range contracts {
		found[contract.ID] = true
	}
	if !found[active] || !found[fresh] {
		t.Fatalf("missing expected contracts: %v", found)
	}
}

func TestListUnpaidJobs(t *testing.T) {
	store := newMemStore()
	client := store.addProfile(model.RoleClient, "Ann", "", dec("0"))
	contractor := store.addProfile(model.RoleContractor, "Kim", "Programmer", dec("0"))

	inProgress := store.addContract(client, contractor, model.ContractStatusInProgress)
	fresh := store.addContract(client, contractor, model.ContractStatusNew)
	terminated := store.addContract(client, contractor, model.ContractStatusTerminated)

	unpaid := store.addJob(inProgress, dec("100"), nil)
	paidAt := time.Now()
	store.addJob(inProgress, dec("50"), &paidAt)
	store.addJob(fresh, dec("10"), nil)
	store.addJob(terminated, dec("10"), nil)

	queries := newQueries(store)
	ctx := context.Background()

	for _, roles := range []model.RoleFilter{model.FilterBoth, 0} {
		jobs, err := queries.ListUnpaidJobs(ctx, client, roles)
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 1 || jobs[0].ID != unpaid {
			t.Fatalf("roles=%v got %d jobs, want the single unpaid in-progress job", roles, len(jobs))
		}
	}

	jobs, err := queries.ListUnpaidJobs(ctx, client, model.FilterContractor)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Fatalf("client is not a contractor anywhere, got %d jobs", len(jobs))
	}

	jobs, err = queries.ListUnpaidJobs(ctx, contractor, model.FilterContractor)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("contractor side: got %d jobs want 1", len(jobs))
	}

	if _, err := queries.ListUnpaidJobs(ctx, client, model.RoleFilter(8)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown filter bits: want ErrInvalidInput, got %v", err)
	}
}

func TestListUnpaidJobsNoDuplicateForDualRoleProfile(t *testing.T) {
	store := newMemStore()
	// structurally a profile can sit on both sides of a contract
	dual := store.addProfile(model.RoleClient, "Ann", "", dec("0"))
	contract := store.addContract(dual, dual, model.ContractStatusInProgress)
	job := store.addJob(contract, dec("100"), nil)

	queries := newQueries(store)

	jobs, err := queries.ListUnpaidJobs(context.Background(), dual, model.FilterBoth)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != job {
		t.Fatalf("job must appear exactly once, got %d", len(jobs))
	}
}

func TestJobReceipt(t *testing.T) {
	store := newMemStore()
	client := store.addProfile(model.RoleClient, "Ann", "", dec("0"))
	contractor := store.addProfile(model.RoleContractor, "Kim", "Programmer", dec("0"))
	stranger := store.addProfile(model.RoleClient, "Eve", "", dec("0"))
	contract := store.addContract(client, contractor, model.ContractStatusInProgress)

	paidAt := time.Now()
	paid := store.addJob(contract, dec("80"), &paidAt)
	unpaid := store.addJob(contract, dec("50"), nil)

	queries := newQueries(store)
	ctx := context.Background()

	result, err := queries.JobReceipt(ctx, paid, client)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(result.Content, []byte("%PDF")) {
		t.Fatalf("unexpected content: %q", result.Content)
	}
	if result.FileName == "" {
		t.Fatal("file name must be set")
	}

	if _, err := queries.JobReceipt(ctx, unpaid, client); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unpaid job: want ErrNotFound, got %v", err)
	}
	if _, err := queries.JobReceipt(ctx, paid, stranger); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger: want ErrNotFound, got %v", err)
	}
}
