package store

import (
	"context"
	"time"

	"github.com/mobilecollector/backoffice/types"
	"gorm.io/gorm"
)

// TransactionRepository handles persistence for transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (types.Transaction, error) {
	var tx types.Transaction
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("User").
		Where("id = ?", id).
		Take(&tx).Error
	if err != nil {
		return types.Transaction{}, translate(err)
	}
	return tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter types.TransactionFilter, offset, limit int) ([]types.Transaction, int, error) {
	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&types.Transaction{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []types.Transaction
	err := applyFilter(r.db.WithContext(ctx), filter).
		Preload("Customer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, int(total), nil
}

// ListAll returns every matching transaction, newest first, with customer and
// creator loaded. Used by exports.
func (r *TransactionRepository) ListAll(ctx context.Context, filter types.TransactionFilter) ([]types.Transaction, error) {
	var txs []types.Transaction
	err := applyFilter(r.db.WithContext(ctx), filter).
		Preload("Customer").
		Preload("User").
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return types.Transaction{}, translate(err)
	}
	return tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	result := r.db.WithContext(ctx).Model(&types.Transaction{ID: tx.ID}).Updates(map[string]any{
		"transaction_type": tx.TransactionType,
		"amount":           tx.Amount,
		"description":      tx.Description,
		"office_code":      tx.OfficeCode,
	})
	if result.Error != nil {
		return types.Transaction{}, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.Transaction{}, ErrNotFound
	}
	return r.GetByID(ctx, tx.ID)
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&types.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore removes transactions created strictly before cutoff in one
// statement and returns the number of rows removed.
func (r *TransactionRepository) DeleteBefore(ctx context.Context, cutoff time.Time, officeCodes []string) (int64, error) {
	query := r.db.WithContext(ctx).Where("created_at < ?", cutoff)
	if len(officeCodes) > 0 {
		query = query.Where("office_code IN ?", officeCodes)
	}
	result := query.Delete(&types.Transaction{})
	return result.RowsAffected, result.Error
}

// DeleteAll removes every transaction, or every transaction of the given offices.
func (r *TransactionRepository) DeleteAll(ctx context.Context, officeCodes []string) (int64, error) {
	query := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if len(officeCodes) > 0 {
		query = query.Where("office_code IN ?", officeCodes)
	}
	result := query.Delete(&types.Transaction{})
	return result.RowsAffected, result.Error
}

func applyFilter(query *gorm.DB, filter types.TransactionFilter) *gorm.DB {
	if len(filter.OfficeCodes) > 0 {
		query = query.Where("office_code IN ?", filter.OfficeCodes)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	return query
}
