package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/gigledger/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession sums settled job prices per contractor profession inside
// [from, toExclusive). Ties resolve to the lexicographically smallest
// profession so the result is stable for a given dataset.
func (r *ReportRepository) BestProfession(ctx context.Context, from, toExclusive time.Time) (*model.ProfessionEarnings, error) {
	var rows []model.ProfessionEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			contractor.profession AS profession,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles contractor ON contractor.id = c.contractor_id
		WHERE j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY contractor.profession
		ORDER BY total DESC, profession ASC
		LIMIT 1
	`, from, toExclusive).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// BestClients ranks clients by the total they paid inside
// [from, toExclusive), descending; ties resolve by name then id.
func (r *ReportRepository) BestClients(ctx context.Context, from, toExclusive time.Time, limit int) ([]model.ClientSpending, error) {
	var rows []model.ClientSpending
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			client.id,
			client.first_name || ' ' || client.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles client ON client.id = c.client_id
		WHERE j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY client.id, client.first_name, client.last_name
		ORDER BY paid DESC, full_name ASC, client.id ASC
		LIMIT ?
	`, from, toExclusive, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
