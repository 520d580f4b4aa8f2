package models

import "github.com/google/uuid"

// Notification is stored for the reporter whenever their incident's
// lifecycle changes. Delivery is pull-based over the REST surface.
type Notification struct {
	Model
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	IncidentID uuid.UUID `json:"incident_id" gorm:"type:uuid"`
	Title      string    `json:"title"`
	Body       string    `json:"body" gorm:"type:varchar(1000)"`
	Read       bool      `json:"read" gorm:"default:false"`
}
