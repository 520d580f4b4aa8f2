package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity of an incident, set at creation and immutable thereafter.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incident is a citizen-submitted scam/fraud report with a lifecycle status.
type Incident struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:varchar(2000)"`
	Location    string            `json:"location"`
	Pincode     string            `json:"pincode" gorm:"type:varchar(6);index"`
	Severity    Severity          `json:"severity" gorm:"type:varchar(16);not null"`
	Status      IncidentStatus    `json:"status" gorm:"type:varchar(16);not null;default:reported"`
	ReportedBy  uint              `json:"reported_by" gorm:"not null;index"`
	Reporter    *User             `json:"reporter,omitempty" gorm:"foreignKey:ReportedBy"`
	AssignedTo  *uint             `json:"assigned_to,omitempty"`
	Messages    []IncidentMessage `json:"messages,omitempty" gorm:"foreignKey:IncidentID"`
	Feedback    *IncidentFeedback `json:"feedback,omitempty" gorm:"foreignKey:IncidentID"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// IncidentMessage is one entry of the append-only triage log. Messages are
// never edited or removed.
type IncidentMessage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	IncidentID uuid.UUID `json:"incident_id" gorm:"type:uuid;not null;index"`
	AuthorID   uint      `json:"author_id" gorm:"not null"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body" gorm:"type:varchar(2000);not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// IncidentFeedback may be attached exactly once, by the reporting user,
// only after the incident is resolved.
type IncidentFeedback struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	IncidentID  uuid.UUID `json:"incident_id" gorm:"type:uuid;not null;uniqueIndex"`
	Rating      int       `json:"rating" gorm:"not null"`
	Comment     string    `json:"comment" gorm:"type:varchar(1000)"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}

// PincodeCount is one heatmap bucket: how many incidents share a pincode.
type PincodeCount struct {
	Pincode string `json:"pincode"`
	Count   int    `json:"count"`
}

type CreateIncidentRequest struct {
	Title       string   `json:"title" binding:"required,min=3" conform:"trim"`
	Description string   `json:"description" binding:"required" conform:"trim"`
	Location    string   `json:"location" conform:"trim"`
	Pincode     string   `json:"pincode" binding:"required,len=6,numeric"`
	Severity    Severity `json:"severity" binding:"required"`
}

type StatusUpdateRequest struct {
	Status IncidentStatus `json:"status" binding:"required"`
}

type AssignRequest struct {
	AssigneeID uint `json:"assignee_id" binding:"required"`
}

type MessageRequest struct {
	Message string `json:"message" binding:"required" conform:"trim"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" conform:"trim"`
}

type MarkFakeRequest struct {
	Reason         string `json:"reason" conform:"trim"`
	PointsToDeduct int    `json:"pointsToDeduct"`
}

type ApproveGenuineRequest struct {
	CyberCellNotes string `json:"cyberCellNotes" conform:"trim"`
	PointsToAward  int    `json:"pointsToAward"`
}
