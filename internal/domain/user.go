package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                     string
	Email                  string
	Name                   string
	PasswordHash           string
	Role                   string
	IsVerified             bool
	VerifiedAt             *time.Time
	VerificationToken      string
	PasswordResetTokenHash ResetTokenHash
	PasswordResetExpiry    *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TokenUser is the part of a user that is safe to hand to clients and to sign into cookies.
type TokenUser struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (u *User) TokenUser() TokenUser {
	return TokenUser{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// MarkVerified consumes the verification token.
func (u *User) MarkVerified(at time.Time) {
	u.IsVerified = true
	u.VerifiedAt = &at
	u.VerificationToken = ""
}

func (u *User) SetPasswordReset(hash ResetTokenHash, expiry time.Time) {
	u.PasswordResetTokenHash = hash
	u.PasswordResetExpiry = &expiry
}

func (u *User) ClearPasswordReset() {
	u.PasswordResetTokenHash = ""
	u.PasswordResetExpiry = nil
}

// ResetActiveAt reports whether a reset token was issued and has not expired at now.
func (u *User) ResetActiveAt(now time.Time) bool {
	return u.PasswordResetTokenHash != "" && u.PasswordResetExpiry != nil && now.Before(*u.PasswordResetExpiry)
}

// NormalizeEmail is applied before every lookup and write so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RefreshToken is the single session record a user may have.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	IsValid   bool
	UserAgent string
	IP        string
	CreatedAt time.Time
}
