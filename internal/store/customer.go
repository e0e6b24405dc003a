package store

import (
	"context"
	"strings"

	"github.com/mobilecollector/backoffice/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchLimit = 10

// CustomerRepository handles persistence for customers.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (types.Customer, error) {
	var customer types.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&customer).Error
	if err != nil {
		return types.Customer{}, translate(err)
	}
	return customer, nil
}

// FindByIdentifier returns the first customer whose primary key, account number,
// alternate account number or full name equals identifier. A single query is
// issued; when several rows match, the field precedence above decides, then the
// oldest record.
func (r *CustomerRepository) FindByIdentifier(ctx context.Context, identifier string) (types.Customer, error) {
	var customer types.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? OR nasabah_id = ? OR no_alternatif = ? OR full_name = ?",
			identifier, identifier, identifier, identifier).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN id = ? THEN 0 WHEN nasabah_id = ? THEN 1 WHEN no_alternatif = ? THEN 2 ELSE 3 END, created_at ASC, id ASC",
				Vars:               []any{identifier, identifier, identifier},
				WithoutParentheses: true,
			},
		}).
		Take(&customer).Error
	if err != nil {
		return types.Customer{}, translate(err)
	}
	return customer, nil
}

// Search performs a case-insensitive substring match over the identifying fields.
func (r *CustomerRepository) Search(ctx context.Context, term string) ([]types.Customer, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var customers []types.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(id) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(nasabah_id) LIKE ? OR LOWER(no_alternatif) LIKE ?",
			pattern, pattern, pattern, pattern).
		Order("full_name ASC").
		Limit(searchLimit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) List(ctx context.Context, offset, limit int) ([]types.Customer, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&types.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []types.Customer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, int(total), nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer types.Customer) (types.Customer, error) {
	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return types.Customer{}, translate(err)
	}
	return customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer types.Customer) (types.Customer, error) {
	result := r.db.WithContext(ctx).Model(&types.Customer{ID: customer.ID}).Updates(map[string]any{
		"nasabah_id":      customer.NasabahID,
		"no_alternatif":   customer.NoAlternatif,
		"full_name":       customer.FullName,
		"type_customer":   customer.TypeCustomer,
		"account_balance": customer.AccountBalance,
		"address":         customer.Address,
	})
	if result.Error != nil {
		return types.Customer{}, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.Customer{}, ErrNotFound
	}
	return r.GetByID(ctx, customer.ID)
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&types.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
