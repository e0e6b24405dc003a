package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mobilecollector/backoffice/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	dateLayout          = "2006-01-02"
	descriptionTemplate = "Setoran Mobile Collector - No rek %s - a.n %s"

	msgRequiredFields    = "Semua field wajib diisi"
	msgAmountNotNumber   = "Amount harus berupa angka"
	msgAmountNotPositive = "Amount harus lebih besar dari 0"
	msgAmountTooLarge    = "Amount melebihi batas maksimum"
	msgInvalidType       = "transaction_type harus deposit atau withdraw"
)

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (types.Transaction, error)
	List(ctx context.Context, filter types.TransactionFilter, offset, limit int) ([]types.Transaction, int, error)
	Create(ctx context.Context, tx types.Transaction) (types.Transaction, error)
	Update(ctx context.Context, tx types.Transaction) (types.Transaction, error)
	Delete(ctx context.Context, id string) error
	DeleteBefore(ctx context.Context, cutoff time.Time, officeCodes []string) (int64, error)
	DeleteAll(ctx context.Context, officeCodes []string) (int64, error)
}

// CustomerResolver finds the customer a free-form identifier refers to.
type CustomerResolver interface {
	FindByIdentifier(ctx context.Context, identifier string) (types.Customer, error)
}

// TransactionObserver is notified about committed writes, e.g. for metrics.
type TransactionObserver interface {
	TransactionCreated(tx types.Transaction)
	TransactionsDeleted(count int64)
}

// TransactionService encapsulates transaction use-cases.
type TransactionService struct {
	repo      TransactionRepository
	customers CustomerResolver
	publisher Publisher
	observer  TransactionObserver
	location  *time.Location
	now       func() time.Time
}

// TransactionOption customizes a TransactionService.
type TransactionOption func(*TransactionService)

// WithPublisher publishes transaction events on p.
func WithPublisher(p Publisher) TransactionOption {
	return func(s *TransactionService) { s.publisher = p }
}

// WithObserver reports committed writes to o.
func WithObserver(o TransactionObserver) TransactionOption {
	return func(s *TransactionService) { s.observer = o }
}

// WithLocation sets the zone calendar dates are interpreted in.
func WithLocation(loc *time.Location) TransactionOption {
	return func(s *TransactionService) { s.location = loc }
}

// WithClock overrides the current time source.
func WithClock(now func() time.Time) TransactionOption {
	return func(s *TransactionService) { s.now = now }
}

func NewTransactionService(repo TransactionRepository, customers CustomerResolver, opts ...TransactionOption) *TransactionService {
	s := &TransactionService{
		repo:      repo,
		customers: customers,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTransactionInput is the operator-supplied part of a new transaction.
// Amount holds the raw textual amount; Description is accepted but ignored.
type CreateTransactionInput struct {
	Identifier      string
	TransactionType string
	Amount          string
	OfficeCode      string
	Description     string
}

// Create validates input, resolves the customer identifier and stores a
// transaction attributed to the session identity.
func (s *TransactionService) Create(ctx context.Context, creator types.Identity, input CreateTransactionInput) (types.Transaction, error) {
	if strings.TrimSpace(creator.ID) == "" {
		return types.Transaction{}, ErrUnauthorized
	}

	identifier := strings.TrimSpace(input.Identifier)
	txType := strings.TrimSpace(input.TransactionType)
	officeCode := strings.TrimSpace(input.OfficeCode)
	rawAmount := strings.TrimSpace(input.Amount)
	if identifier == "" || txType == "" || rawAmount == "" || officeCode == "" {
		return types.Transaction{}, invalid(msgRequiredFields)
	}

	amount, err := parseAmount(rawAmount)
	if err != nil {
		return types.Transaction{}, err
	}
	if !types.TransactionType(txType).Valid() {
		return types.Transaction{}, invalid(msgInvalidType)
	}

	customer, err := s.customers.FindByIdentifier(ctx, identifier)
	if err != nil {
		return types.Transaction{}, notFound(err,
			fmt.Sprintf("Nasabah tidak ditemukan dengan identifier %q.", identifier))
	}

	created, err := s.repo.Create(ctx, types.Transaction{
		CustomerID:      customer.ID,
		UserID:          creator.ID,
		TransactionType: types.TransactionType(txType),
		Amount:          amount,
		Description:     fmt.Sprintf(descriptionTemplate, customer.NasabahID, customer.FullName),
		OfficeCode:      officeCode,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	created.Customer = &customer

	log.Ctx(ctx).Info().
		Str("transaction_id", created.ID).
		Str("customer_id", customer.ID).
		Str("office_code", officeCode).
		Msg("transaction created")

	if s.observer != nil {
		s.observer.TransactionCreated(created)
	}
	publish(ctx, s.publisher, ChannelTransactionCreated, TransactionCreatedEvent{
		TransactionID:   created.ID,
		CustomerID:      customer.ID,
		UserID:          creator.ID,
		TransactionType: string(created.TransactionType),
		Amount:          created.Amount.StringFixed(2),
		OfficeCode:      officeCode,
		CreatedAt:       created.CreatedAt,
	})

	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (types.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Transaction{}, notFound(err, "Transaksi tidak ditemukan.")
	}
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, filter types.TransactionFilter, offset, limit int) ([]types.Transaction, int, error) {
	return s.repo.List(ctx, filter, offset, limit)
}

// UpdateTransactionInput carries the fields an administrator may change. Nil
// fields are left untouched.
type UpdateTransactionInput struct {
	TransactionType *string
	Amount          *string
	Description     *string
	OfficeCode      *string
}

func (s *TransactionService) Update(ctx context.Context, id string, input UpdateTransactionInput) (types.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Transaction{}, notFound(err, "Transaksi tidak ditemukan.")
	}

	if input.TransactionType != nil {
		txType := types.TransactionType(strings.TrimSpace(*input.TransactionType))
		if !txType.Valid() {
			return types.Transaction{}, invalid(msgInvalidType)
		}
		tx.TransactionType = txType
	}
	if input.Amount != nil {
		amount, err := parseAmount(strings.TrimSpace(*input.Amount))
		if err != nil {
			return types.Transaction{}, err
		}
		tx.Amount = amount
	}
	if input.Description != nil {
		tx.Description = strings.TrimSpace(*input.Description)
	}
	if input.OfficeCode != nil {
		code := strings.TrimSpace(*input.OfficeCode)
		if code == "" {
			return types.Transaction{}, invalid("office_code tidak boleh kosong")
		}
		tx.OfficeCode = code
	}

	updated, err := s.repo.Update(ctx, tx)
	if err != nil {
		return types.Transaction{}, notFound(err, "Transaksi tidak ditemukan.")
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "Transaksi tidak ditemukan.")
	}
	if s.observer != nil {
		s.observer.TransactionsDeleted(1)
	}
	return nil
}

// CleanupInput selects transactions for bulk removal.
type CleanupInput struct {
	// BeforeDate is a YYYY-MM-DD calendar date; rows up to the end of that day
	// are removed. Empty means everything before the start of today.
	BeforeDate  string
	DeleteAll   bool
	OfficeCodes []string
}

// CleanupResult reports a bulk removal.
type CleanupResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// Cleanup removes transactions in a single statement. Removing nothing is not
// an error.
func (s *TransactionService) Cleanup(ctx context.Context, actor types.Identity, input CleanupInput) (CleanupResult, error) {
	var (
		count  int64
		cutoff time.Time
		err    error
	)

	if input.DeleteAll {
		count, err = s.repo.DeleteAll(ctx, input.OfficeCodes)
	} else {
		cutoff, err = s.cleanupCutoff(input.BeforeDate)
		if err != nil {
			return CleanupResult{}, err
		}
		count, err = s.repo.DeleteBefore(ctx, cutoff, input.OfficeCodes)
	}
	if err != nil {
		return CleanupResult{}, fmt.Errorf("cleanup transactions: %w", err)
	}

	log.Ctx(ctx).Info().
		Int64("count", count).
		Bool("delete_all", input.DeleteAll).
		Time("before", cutoff).
		Strs("office_codes", input.OfficeCodes).
		Str("user_id", actor.ID).
		Msg("transactions cleaned up")

	if s.observer != nil && count > 0 {
		s.observer.TransactionsDeleted(count)
	}
	publish(ctx, s.publisher, ChannelTransactionCleanup, TransactionCleanupEvent{
		DeletedBy:   actor.ID,
		DeleteAll:   input.DeleteAll,
		Before:      cutoff,
		OfficeCodes: input.OfficeCodes,
		Count:       count,
	})

	var message string
	switch {
	case input.DeleteAll:
		message = fmt.Sprintf("Berhasil menghapus semua transaksi (%d data).", count)
	default:
		message = fmt.Sprintf("Berhasil menghapus %d transaksi sebelum %s.", count,
			cutoff.In(s.location).Format(dateLayout))
	}
	return CleanupResult{Message: message, Count: count}, nil
}

func (s *TransactionService) cleanupCutoff(beforeDate string) (time.Time, error) {
	beforeDate = strings.TrimSpace(beforeDate)
	if beforeDate == "" {
		now := s.now().In(s.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location), nil
	}
	day, err := time.ParseInLocation(dateLayout, beforeDate, s.location)
	if err != nil {
		return time.Time{}, invalid("beforeDate harus berformat YYYY-MM-DD")
	}
	return day.AddDate(0, 0, 1), nil
}

// maxAmount is the first value that no longer fits NUMERIC(18,2).
var maxAmount = decimal.New(1, 16)

// parseAmount accepts a decimal number and rejects anything else, including
// values that are not positive once rounded to cents.
func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, invalid(msgRequiredFields)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, invalid(msgAmountNotNumber)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Decimal{}, invalid(msgAmountNotPositive)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, invalid(msgAmountTooLarge)
	}
	return amount, nil
}
