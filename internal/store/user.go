package store

import (
	"context"

	"github.com/mobilecollector/backoffice/types"
	"gorm.io/gorm"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	var user types.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// GetByLogin finds a user whose email or username equals loginID.
func (r *UserRepository) GetByLogin(ctx context.Context, loginID string) (types.User, error) {
	var user types.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", loginID, loginID).
		Order("created_at ASC").
		Take(&user).Error
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// GetByFullName returns the oldest user with the given display name.
func (r *UserRepository) GetByFullName(ctx context.Context, fullName string) (types.User, error) {
	var user types.User
	err := r.db.WithContext(ctx).
		Where("full_name = ?", fullName).
		Order("created_at ASC").
		Take(&user).Error
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// List returns users ordered by name, optionally restricted to one role.
func (r *UserRepository) List(ctx context.Context, role types.Role) ([]types.User, error) {
	query := r.db.WithContext(ctx).Order("full_name ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []types.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	result := r.db.WithContext(ctx).Model(&types.User{ID: user.ID}).Updates(map[string]any{
		"full_name":     user.FullName,
		"username":      user.Username,
		"email":         user.Email,
		"role":          user.Role,
		"access_token":  user.AccessToken,
		"password_hash": user.PasswordHash,
	})
	if result.Error != nil {
		return types.User{}, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.User{}, ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&types.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
