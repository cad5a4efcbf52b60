package dto

import (
	"time"

	"inkhub/internal/domain/auth"
	"inkhub/internal/domain/entity"
)

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

// FromLoginResult maps an auth result to the response shape.
func FromLoginResult(res *auth.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        FromUser(res.User),
	}
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Branch   string `json:"branch"`
}

// ToUser maps the request onto an account record. The password travels
// separately so the service can hash it.
func (r RegisterRequest) ToUser() entity.User {
	return entity.User{
		Username: r.Username,
		Email:    r.Email,
		Role:     r.Role,
		Branch:   r.Branch,
	}
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UserResponse is the public view of an account. Password hash and
// session token never leave the server.
type UserResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	Branch      string `json:"branch,omitempty"`
	PrefCompact bool   `json:"prefCompact"`
}

// FromUser maps an account record to its public view.
func FromUser(u entity.User) UserResponse {
	return UserResponse{
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Branch:      u.Branch,
		PrefCompact: u.PrefCompact,
	}
}

// FromUsers maps a slice of account records.
func FromUsers(users []entity.User) []UserResponse {
	res := make([]UserResponse, len(users))
	for i, u := range users {
		res[i] = FromUser(u)
	}
	return res
}
