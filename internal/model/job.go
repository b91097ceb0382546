package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is a unit of billable work under one contract. A nil PaymentDate
// means unpaid; once set the job is settled and never changes again.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	ContractID  uuid.UUID       `json:"contract_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PaymentDate *time.Time      `json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (j Job) Paid() bool {
	return j.PaymentDate != nil
}

// RoleFilter selects which side of a contract a caller is matched
// against when listing unpaid jobs.
type RoleFilter uint8

const (
	FilterClient RoleFilter = 1 << iota
	FilterContractor

	FilterBoth = FilterClient | FilterContractor
)

func (f RoleFilter) Has(flag RoleFilter) bool {
	return f&flag != 0
}
