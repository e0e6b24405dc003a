package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUserFields    = "full_name, username, email dan password wajib diisi."
	msgUserNotFound  = "User tidak ditemukan."
	msgUserDuplicate = "Username atau email sudah digunakan."
	msgInvalidRole   = "role tidak valid"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByLogin(ctx context.Context, loginID string) (types.User, error)
	GetByFullName(ctx context.Context, fullName string) (types.User, error)
	List(ctx context.Context, role types.Role) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo    UserRepository
	cost    int
	compare func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost, compare: bcrypt.CompareHashAndPassword}
}

// dummy returns a hash at the service's cost, compared against when no account
// matches so that unknown logins take as long as wrong passwords.
func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// Authenticate checks a password against the account whose email or username
// equals loginID. Every failure mode yields ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, loginID, password string) (types.User, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return types.User{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByLogin(ctx, loginID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.compare(s.dummy(), []byte(password))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// NewUserInput is the payload for creating an account.
type NewUserInput struct {
	FullName    string
	Username    string
	Email       string
	Password    string
	Role        string
	AccessToken string
}

// Create stores a new account. An empty role defaults to MARKETING.
func (s *UserService) Create(ctx context.Context, input NewUserInput) (types.User, error) {
	user := types.User{
		FullName:    strings.TrimSpace(input.FullName),
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(input.Email),
		Role:        types.Role(strings.ToUpper(strings.TrimSpace(input.Role))),
		AccessToken: strings.TrimSpace(input.AccessToken),
	}
	if user.FullName == "" || user.Username == "" || user.Email == "" || input.Password == "" {
		return types.User{}, invalid(msgUserFields)
	}
	if user.Role == "" {
		user.Role = types.RoleMarketing
	}
	if !user.Role.Valid() {
		return types.User{}, invalid(msgInvalidRole)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = string(hashed)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, conflict(err, msgUserDuplicate)
	}
	return created, nil
}

// Register is self-service sign-up; the account is always MARKETING.
func (s *UserService) Register(ctx context.Context, input NewUserInput) (types.User, error) {
	input.Role = string(types.RoleMarketing)
	return s.Create(ctx, input)
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, notFound(err, msgUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetByFullName(ctx context.Context, fullName string) (types.User, error) {
	user, err := s.repo.GetByFullName(ctx, strings.TrimSpace(fullName))
	if err != nil {
		return types.User{}, notFound(err, msgUserNotFound)
	}
	return user, nil
}

// List returns all users, or only those holding role when it is non-empty.
func (s *UserService) List(ctx context.Context, role string) ([]types.User, error) {
	r := types.Role(strings.ToUpper(strings.TrimSpace(role)))
	if r != "" && !r.Valid() {
		return nil, invalid(msgInvalidRole)
	}
	return s.repo.List(ctx, r)
}

// Tellers lists TELLER accounts with their office codes.
func (s *UserService) Tellers(ctx context.Context) ([]types.Teller, error) {
	users, err := s.repo.List(ctx, types.RoleTeller)
	if err != nil {
		return nil, err
	}
	tellers := make([]types.Teller, 0, len(users))
	for _, u := range users {
		tellers = append(tellers, types.Teller{ID: u.ID, FullName: u.FullName, AccessToken: u.AccessToken})
	}
	return tellers, nil
}

// UserPatch holds optional replacements; nil or blank fields are ignored.
type UserPatch struct {
	FullName    *string
	Email       *string
	Role        *string
	AccessToken *string
	Password    *string
}

func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, notFound(err, msgUserNotFound)
	}

	applyString(&user.FullName, patch.FullName)
	applyString(&user.Email, patch.Email)
	if patch.AccessToken != nil {
		user.AccessToken = strings.TrimSpace(*patch.AccessToken)
	}
	if patch.Role != nil && strings.TrimSpace(*patch.Role) != "" {
		role := types.Role(strings.ToUpper(strings.TrimSpace(*patch.Role)))
		if !role.Valid() {
			return types.User{}, invalid(msgInvalidRole)
		}
		user.Role = role
	}
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.cost)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = string(hashed)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, conflict(notFound(err, msgUserNotFound), msgUserDuplicate)
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return notFound(s.repo.Delete(ctx, id), msgUserNotFound)
}
