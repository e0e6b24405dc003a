package services

import (
	"context"
	"strings"

	"github.com/mobilecollector/backoffice/types"
	"github.com/shopspring/decimal"
)

// MinSearchLength is the shortest term that triggers a customer search.
const MinSearchLength = 3

const (
	msgCustomerFields    = "Semua kolom harus diisi."
	msgCustomerNotFound  = "Nasabah tidak ditemukan."
	msgCustomerDuplicate = "Nomor rekening atau nomor alternatif sudah terdaftar."
	msgBalanceNotNumber  = "account_balance harus berupa angka"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (types.Customer, error)
	FindByIdentifier(ctx context.Context, identifier string) (types.Customer, error)
	Search(ctx context.Context, term string) ([]types.Customer, error)
	List(ctx context.Context, offset, limit int) ([]types.Customer, int, error)
	Create(ctx context.Context, customer types.Customer) (types.Customer, error)
	Update(ctx context.Context, customer types.Customer) (types.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerService encapsulates customer use-cases.
type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// CustomerInput is the payload for creating a customer. AccountBalance is the
// raw decimal text.
type CustomerInput struct {
	NasabahID      string
	NoAlternatif   string
	FullName       string
	TypeCustomer   string
	AccountBalance string
	Address        string
}

func (s *CustomerService) Create(ctx context.Context, creator types.Identity, input CustomerInput) (types.Customer, error) {
	customer := types.Customer{
		NasabahID:       strings.TrimSpace(input.NasabahID),
		NoAlternatif:    strings.TrimSpace(input.NoAlternatif),
		FullName:        strings.TrimSpace(input.FullName),
		TypeCustomer:    strings.TrimSpace(input.TypeCustomer),
		Address:         strings.TrimSpace(input.Address),
		CreatedByUserID: creator.ID,
	}
	rawBalance := strings.TrimSpace(input.AccountBalance)
	if customer.NasabahID == "" || customer.NoAlternatif == "" || customer.FullName == "" ||
		customer.TypeCustomer == "" || customer.Address == "" || rawBalance == "" {
		return types.Customer{}, invalid(msgCustomerFields)
	}

	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return types.Customer{}, invalid(msgBalanceNotNumber)
	}
	customer.AccountBalance = balance.Round(2)

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return types.Customer{}, conflict(err, msgCustomerDuplicate)
	}
	return created, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (types.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Customer{}, notFound(err, msgCustomerNotFound)
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, offset, limit int) ([]types.Customer, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Search returns at most ten customers loosely matching term. Terms shorter
// than MinSearchLength yield an empty result without querying.
func (s *CustomerService) Search(ctx context.Context, term string) ([]types.Customer, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return []types.Customer{}, nil
	}
	customers, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []types.Customer{}
	}
	return customers, nil
}

// CustomerPatch holds optional replacements; nil or blank fields are ignored.
type CustomerPatch struct {
	NasabahID      *string
	NoAlternatif   *string
	FullName       *string
	TypeCustomer   *string
	AccountBalance *string
	Address        *string
}

func (s *CustomerService) Update(ctx context.Context, id string, patch CustomerPatch) (types.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Customer{}, notFound(err, msgCustomerNotFound)
	}

	applyString(&customer.NasabahID, patch.NasabahID)
	applyString(&customer.NoAlternatif, patch.NoAlternatif)
	applyString(&customer.FullName, patch.FullName)
	applyString(&customer.TypeCustomer, patch.TypeCustomer)
	applyString(&customer.Address, patch.Address)
	if patch.AccountBalance != nil && strings.TrimSpace(*patch.AccountBalance) != "" {
		balance, err := decimal.NewFromString(strings.TrimSpace(*patch.AccountBalance))
		if err != nil {
			return types.Customer{}, invalid(msgBalanceNotNumber)
		}
		customer.AccountBalance = balance.Round(2)
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return types.Customer{}, conflict(notFound(err, msgCustomerNotFound), msgCustomerDuplicate)
	}
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return notFound(s.repo.Delete(ctx, id), msgCustomerNotFound)
}

func applyString(dst *string, value *string) {
	if value == nil {
		return
	}
	if trimmed := strings.TrimSpace(*value); trimmed != "" {
		*dst = trimmed
	}
}
