package domain

import (
	"time"
)

// User is a registered account. PasswordHash never leaves the service;
// responses use the Profile projection instead.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Avatar       *string
	IsVerified   bool
	IsBanned     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the client-facing view of a user.
type Profile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Avatar     *string   `json:"avatar"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile returns the client-facing projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// TokenPair holds a freshly signed access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
