package models

import (
	"time"

	"github.com/google/uuid"
)

// ScamType categorizes a community post.
type ScamType string

const (
	ScamPhishing   ScamType = "phishing"
	ScamUPIFraud   ScamType = "upi_fraud"
	ScamJobOffer   ScamType = "job_offer"
	ScamLottery    ScamType = "lottery"
	ScamInvestment ScamType = "investment"
	ScamOther      ScamType = "other"
)

func IsValidScamType(s ScamType) bool {
	switch s {
	case ScamPhishing, ScamUPIFraud, ScamJobOffer, ScamLottery, ScamInvestment, ScamOther:
		return true
	}
	return false
}

// CommunityPost is a user-shared scam warning or experience.
type CommunityPost struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title       string        `json:"title" gorm:"not null"`
	Content     string        `json:"content" gorm:"type:varchar(5000);not null"`
	ScamType    ScamType      `json:"scam_type" gorm:"type:varchar(32)"`
	Region      string        `json:"region"`
	Pincode     string        `json:"pincode" gorm:"type:varchar(6);index"`
	IsAnonymous bool          `json:"is_anonymous"`
	Tags        []string      `json:"tags" gorm:"serializer:json"`
	AuthorID    uint          `json:"author_id" gorm:"not null;index"`
	Upvotes     int           `json:"upvotes" gorm:"default:0"`
	Downvotes   int           `json:"downvotes" gorm:"default:0"`
	Views       int           `json:"views" gorm:"default:0"`
	Comments    []PostComment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PostComment is one entry of the append-only comment list.
type PostComment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PostID      uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	AuthorID    uint      `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	IsAnonymous bool      `json:"is_anonymous"`
	Content     string    `json:"content" gorm:"type:varchar(2000);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostVote holds one user's vote on one post. The composite unique index
// is what enforces one vote per user per post.
type PostVote struct {
	Model
	PostID uuid.UUID `json:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_post_voter"`
	UserID uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_post_voter"`
	Value  int       `json:"value" gorm:"not null"` // +1 or -1
}

type CreatePostRequest struct {
	Title       string   `json:"title" binding:"required,min=3" conform:"trim"`
	Content     string   `json:"content" binding:"required" conform:"trim"`
	ScamType    ScamType `json:"scam_type" binding:"required"`
	Region      string   `json:"region" conform:"trim"`
	Pincode     string   `json:"pincode" binding:"omitempty,len=6,numeric"`
	IsAnonymous bool     `json:"is_anonymous"`
	Tags        []string `json:"tags"`
}

type VoteRequest struct {
	Value int `json:"value" binding:"required,oneof=1 -1"`
}

type CommentRequest struct {
	Content     string `json:"content" binding:"required" conform:"trim"`
	IsAnonymous bool   `json:"is_anonymous"`
}
