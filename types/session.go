package types

// Identity is the authenticated principal carried by a session token.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// IdentityOf projects the session fields of a user.
func IdentityOf(u User) Identity {
	return Identity{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		FullName: u.FullName,
		Username: u.Username,
	}
}
