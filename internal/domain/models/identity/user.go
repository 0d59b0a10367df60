package identity

import (
	"time"
)

// User is an authenticated member of an organization.
type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Name           *string   `json:"name,omitempty" db:"name"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	OrganizationID *string   `json:"organization_id,omitempty" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName resolves the user's UI label: name, else email, else a
// fixed placeholder.
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown User"
	}
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown User"
}

// Organization is the tenant every chat belongs to.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    *string   `json:"domain,omitempty" db:"domain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
