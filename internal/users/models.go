package users

import "time"

// Record is one row of the bot user list. UserID is the external chat
// platform identifier and is unique.
type Record struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	UserID   int64  `db:"user_id" json:"user_id"`
	UserRole string `db:"user_role" json:"user_role"`
}

// WebUser is an account for the HTTP API; it authenticates with a password
// and receives a JWT.
type WebUser struct {
	ID           int64     `db:"id" json:"id"`
	Login        string    `db:"login" json:"login"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
