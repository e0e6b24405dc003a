package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level of a back-office account.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleMarketing  Role = "MARKETING"
	RoleTeller     Role = "TELLER"
)

// Roles lists every role known to the system.
var Roles = []Role{RoleAdmin, RoleSuperAdmin, RoleMarketing, RoleTeller}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents a staff account.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`

	// FullName is the display name shown on reports, e.g. as the marketing name.
	FullName string `json:"full_name" db:"full_name" gorm:"not null"`

	// Username is the unique login name.
	Username string `json:"username" db:"username" gorm:"uniqueIndex;not null"`

	// Email is the user's unique email address. Either it or Username can be used to log in.
	Email string `json:"email" db:"email" gorm:"uniqueIndex;not null"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash" gorm:"not null"`

	// Role indicates the user's authorization level.
	Role Role `json:"role" db:"role" gorm:"type:varchar(20);not null"`

	// AccessToken is the per-teller office code. It is unrelated to the session token.
	AccessToken string `json:"access_token" db:"access_token"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Teller is the reduced user view used by the office picker.
type Teller struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	AccessToken string `json:"access_token"`
}
