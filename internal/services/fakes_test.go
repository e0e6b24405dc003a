package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/types"
)

type fakeTransactionRepo struct {
	created      []types.Transaction
	byID         map[string]types.Transaction
	all          []types.Transaction
	createErr    error
	deleteCutoff time.Time
	deleteAll    bool
	deleteOffice []string
	deleteCount  int64
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, id string) (types.Transaction, error) {
	tx, ok := f.byID[id]
	if !ok {
		return types.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

func (f *fakeTransactionRepo) List(_ context.Context, _ types.TransactionFilter, _, _ int) ([]types.Transaction, int, error) {
	return f.all, len(f.all), nil
}

func (f *fakeTransactionRepo) ListAll(_ context.Context, filter types.TransactionFilter) ([]types.Transaction, error) {
	if filter.UserID == "" {
		return f.all, nil
	}
	var out []types.Transaction
	for _, tx := range f.all {
		if tx.UserID == filter.UserID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) Create(_ context.Context, tx types.Transaction) (types.Transaction, error) {
	if f.createErr != nil {
		return types.Transaction{}, f.createErr
	}
	tx.ID = "tx-1"
	tx.CreatedAt = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	f.created = append(f.created, tx)
	return tx, nil
}

func (f *fakeTransactionRepo) Update(_ context.Context, tx types.Transaction) (types.Transaction, error) {
	if _, ok := f.byID[tx.ID]; !ok {
		return types.Transaction{}, store.ErrNotFound
	}
	f.byID[tx.ID] = tx
	return tx, nil
}

func (f *fakeTransactionRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTransactionRepo) DeleteBefore(_ context.Context, cutoff time.Time, officeCodes []string) (int64, error) {
	f.deleteCutoff = cutoff
	f.deleteOffice = officeCodes
	return f.deleteCount, nil
}

func (f *fakeTransactionRepo) DeleteAll(_ context.Context, officeCodes []string) (int64, error) {
	f.deleteAll = true
	f.deleteOffice = officeCodes
	return f.deleteCount, nil
}

type fakeResolver struct {
	customers []types.Customer
	calls     int
}

func (f *fakeResolver) FindByIdentifier(_ context.Context, identifier string) (types.Customer, error) {
	f.calls++
	for _, c := range f.customers {
		if c.ID == identifier || c.NasabahID == identifier || c.NoAlternatif == identifier || c.FullName == identifier {
			return c, nil
		}
	}
	return types.Customer{}, store.ErrNotFound
}

type published struct {
	channel string
	data    []byte
}

type fakePublisher struct {
	messages []published
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	f.messages = append(f.messages, published{channel: channel, data: data})
	if f.err != nil {
		return "", f.err
	}
	return "msg-1", nil
}

type fakeObserver struct {
	created int
	deleted int64
}

func (f *fakeObserver) TransactionCreated(types.Transaction) { f.created++ }
func (f *fakeObserver) TransactionsDeleted(n int64)           { f.deleted += n }

type fakeUserRepo struct {
	users map[string]types.User
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]types.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByLogin(_ context.Context, loginID string) (types.User, error) {
	for _, u := range f.users {
		if u.Email == loginID || u.Username == loginID {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByFullName(_ context.Context, fullName string) (types.User, error) {
	for _, u := range f.users {
		if u.FullName == fullName {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, role types.Role) ([]types.User, error) {
	var out []types.User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = "user-" + user.Username
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeCustomerRepo struct {
	fakeResolver
	created     []types.Customer
	searchCalls int
	createErr   error
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id string) (types.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return types.Customer{}, store.ErrNotFound
}

func (f *fakeCustomerRepo) Search(_ context.Context, _ string) ([]types.Customer, error) {
	f.searchCalls++
	return f.customers, nil
}

func (f *fakeCustomerRepo) List(_ context.Context, _, _ int) ([]types.Customer, int, error) {
	return f.customers, len(f.customers), nil
}

func (f *fakeCustomerRepo) Create(_ context.Context, c types.Customer) (types.Customer, error) {
	if f.createErr != nil {
		return types.Customer{}, f.createErr
	}
	c.ID = "cust-new"
	f.created = append(f.created, c)
	return c, nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c types.Customer) (types.Customer, error) {
	for i := range f.customers {
		if f.customers[i].ID == c.ID {
			f.customers[i] = c
			return c, nil
		}
	}
	return types.Customer{}, store.ErrNotFound
}

func (f *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	for i := range f.customers {
		if f.customers[i].ID == id {
			f.customers = append(f.customers[:i], f.customers[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeArchiver struct {
	keys []string
	size int64
	err  error
}

func (f *fakeArchiver) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	f.keys = append(f.keys, key)
	f.size = size
	return nil
}
