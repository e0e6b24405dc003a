package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mobilecollector/backoffice/types"
)

// ReportRepository runs aggregate queries directly against the pool.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Stats summarizes the dashboard counters. Balance and transaction count are
// limited to officeCodes when any are given.
func (r *ReportRepository) Stats(ctx context.Context, officeCodes []string) (types.Stats, error) {
	where, args, err := officeClause(officeCodes)
	if err != nil {
		return types.Stats{}, err
	}

	query := r.db.Rebind(`
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM transactions` + where + `) AS balance,
			(SELECT COUNT(*) FROM customers) AS customers,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM transactions` + where + `) AS transactions`)

	var stats types.Stats
	if err := r.db.GetContext(ctx, &stats, query, append(args, args...)...); err != nil {
		return types.Stats{}, err
	}
	return stats, nil
}

// TotalsByUser groups transactions by creator, largest total first. Groups with
// a zero or negative total are omitted; unknown creators have an empty name.
func (r *ReportRepository) TotalsByUser(ctx context.Context) ([]types.UserTotal, error) {
	const query = `
		SELECT
			t.user_id AS user_id,
			COALESCE(MAX(u.full_name), '') AS full_name,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COUNT(*) AS transaction_count
		FROM transactions t
		LEFT JOIN users u ON u.id = t.user_id
		GROUP BY t.user_id
		HAVING COALESCE(SUM(t.amount), 0) > 0
		ORDER BY total_amount DESC`

	var totals []types.UserTotal
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, err
	}
	return totals, nil
}

// TotalsByOffice groups transactions by office code.
func (r *ReportRepository) TotalsByOffice(ctx context.Context) ([]types.OfficeTotal, error) {
	const query = `
		SELECT
			office_code,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) AS transaction_count
		FROM transactions
		GROUP BY office_code
		ORDER BY office_code ASC`

	var totals []types.OfficeTotal
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, err
	}
	return totals, nil
}

func officeClause(officeCodes []string) (string, []any, error) {
	if len(officeCodes) == 0 {
		return "", nil, nil
	}
	return sqlx.In(" WHERE office_code IN (?)", officeCodes)
}
