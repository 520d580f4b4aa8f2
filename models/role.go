package models

import "github.com/google/uuid"

// Role gates what a user may do to an incident's lifecycle.
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `json:"name"`
}

const (
	RoleUser      = "User"
	RoleAuthority = "Authority"
	RoleAdmin     = "Admin"
)
