package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionEarnings is one row of the best-profession report: the sum of
// settled job prices credited to contractors of one profession.
type ProfessionEarnings struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

// ClientSpending is one row of the best-clients report.
type ClientSpending struct {
	ID       uuid.UUID       `json:"id"`
	FullName string          `json:"full_name"`
	Paid     decimal.Decimal `json:"paid"`
}

// ClientReport is the assembled best-clients ranking handed to exporters.
type ClientReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Clients     []ClientSpending
}
