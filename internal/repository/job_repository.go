package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigledger/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListUnpaid returns unpaid jobs under in_progress contracts where the
// profile matches one of the filtered roles. DISTINCT keeps a job from
// showing up twice for a profile matched by both role predicates.
func (r *JobRepository) ListUnpaid(ctx context.Context, profileID uuid.UUID, roles model.RoleFilter) ([]model.Job, error) {
	if roles == 0 {
		roles = model.FilterBoth
	}

	var predicates []string
	var args []interface{}
	if roles.Has(model.FilterClient) {
		predicates = append(predicates, "c.client_id = ?")
		args = append(args, profileID)
	}
	if roles.Has(model.FilterContractor) {
		predicates = append(predicates, "c.contractor_id = ?")
		args = append(args, profileID)
	}

	query := `
		SELECT DISTINCT j.id, j.contract_id, j.description, j.price, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.payment_date IS NULL
			AND c.status = 'in_progress'
			AND (` + strings.Join(predicates, " OR ") + `)
		ORDER BY j.created_at ASC, j.id ASC
	`

	var jobs []model.Job
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetReceipt loads a settled job together with its contract and both
// parties. Scoped to participants; an unpaid job is treated as absent.
func (r *JobRepository) GetReceipt(ctx context.Context, jobID, profileID uuid.UUID) (*model.Receipt, error) {
	var row struct {
		JobID                uuid.UUID
		ContractID           uuid.UUID
		Description          string
		Price                decimal.Decimal
		PaymentDate          *time.Time
		JobCreatedAt         time.Time
		Terms                string
		Status               model.ContractStatus
		ClientID             uuid.UUID
		ClientFirstName      string
		ClientLastName       string
		ContractorID         uuid.UUID
		ContractorFirstName  string
		ContractorLastName   string
		ContractorProfession string
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id AS job_id,
			j.contract_id,
			j.description,
			j.price,
			j.payment_date,
			j.created_at AS job_created_at,
			c.terms,
			c.status,
			client.id AS client_id,
			client.first_name AS client_first_name,
			client.last_name AS client_last_name,
			contractor.id AS contractor_id,
			contractor.first_name AS contractor_first_name,
			contractor.last_name AS contractor_last_name,
			contractor.profession AS contractor_profession
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles client ON client.id = c.client_id
		JOIN profiles contractor ON contractor.id = c.contractor_id
		WHERE j.id = ?
			AND j.payment_date IS NOT NULL
			AND (c.client_id = ? OR c.contractor_id = ?)
		LIMIT 1
	`, jobID, profileID, profileID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.JobID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.Receipt{
		Job: model.Job{
			ID:          row.JobID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			PaymentDate: row.PaymentDate,
			CreatedAt:   row.JobCreatedAt,
		},
		Contract: model.Contract{
			ID:           row.ContractID,
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
			Terms:        row.Terms,
			Status:       row.Status,
		},
		Client: model.Profile{
			ID:        row.ClientID,
			FirstName: row.ClientFirstName,
			LastName:  row.ClientLastName,
			Role:      model.RoleClient,
		},
		Contractor: model.Profile{
			ID:         row.ContractorID,
			FirstName:  row.ContractorFirstName,
			LastName:   row.ContractorLastName,
			Profession: row.ContractorProfession,
			Role:       model.RoleContractor,
		},
	}, nil
}
