package entity

import (
	"context"
	"strings"
	"time"

	"inkhub/internal/core/apperror"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleDesigner = "designer"
	RoleUser     = "user"
)

// User is an account. Username is the key: globally unique, always
// lowercase. SessionToken is rewritten on every login and compared by other
// devices to detect that their session has been superseded.
type User struct {
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email,omitempty"`
	Password     string `db:"password" json:"password,omitempty"`
	Role         string `db:"role" json:"role"`
	Branch       string `db:"branch" json:"branch,omitempty"`
	SessionToken string `db:"session_token" json:"session_token,omitempty"`
	PrefCompact  bool   `db:"pref_compact" json:"pref_compact"`
}

// RecordID implements Record.
func (u User) RecordID() any { return u.Username }

// Validate checks boundary invariants.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if u.Username != strings.ToLower(u.Username) {
		return apperror.NewValidation("username must be lowercase").WithDetail("field", "username")
	}
	if u.Role != "" && u.Role != RoleAdmin && u.Role != RoleDesigner && u.Role != RoleUser {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", u.Role)
	}
	return nil
}

// NormalizeUsername derives the canonical username: the explicit username if
// given, otherwise the email's local part, lowercased either way.
func NormalizeUsername(username, email string) string {
	name := strings.TrimSpace(username)
	if name == "" && email != "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return strings.ToLower(name)
}

// Audit actions.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionCritical = "CRITICAL"
)

// AuditEntry is one immutable trail record. Never mutated or deleted
// through normal operation.
type AuditEntry struct {
	ID        int64     `db:"id" json:"id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	User      string    `db:"username" json:"user"`
	Action    string    `db:"action" json:"action"`
	Module    string    `db:"module" json:"module"`
	Details   string    `db:"details" json:"details"`
}

// RecordID implements Record.
func (a AuditEntry) RecordID() any { return a.ID }
