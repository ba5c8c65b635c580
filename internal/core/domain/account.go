package domain

import (
	"errors"
	"time"
)

// DefaultUsername is used when registration does not provide a display name.
const DefaultUsername = "unset"

// ErrDuplicateAccount is returned by AccountRepository.Create when the
// account code is already taken (unique constraint on accounts.account_code).
var ErrDuplicateAccount = errors.New("duplicate account code")

// AccountRow represents an account record returned from the database.
// It includes the password hash so the Logic layer can verify credentials;
// it must never cross the HTTP boundary.
type AccountRow struct {
	ID           int64
	AccountCode  string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// View strips the password hash for use in API responses.
func (r *AccountRow) View() *Account {
	return &Account{
		AccountCode: r.AccountCode,
		Username:    r.Username,
	}
}

// Account is the public view of a registered principal.
type Account struct {
	AccountCode string `json:"account_code"`
	Username    string `json:"username"`
}

// RegisterRequest is the payload for POST /auth/register.
// Username is optional and defaults to DefaultUsername.
type RegisterRequest struct {
	AccountCode string `json:"account_code" binding:"required"`
	Username    string `json:"username"`
	Password    string `json:"password" binding:"required"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	AccountCode string `json:"account_code" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// Session is the outcome of a successful login: a signed access token
// and its absolute expiry. Nothing is persisted server-side.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     Account
}

// TokenResponse is the bearer-mode login response body.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
