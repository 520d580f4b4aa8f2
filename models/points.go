package models

import "github.com/google/uuid"

// Level bands derived from a user's total points. Cut points are
// configuration, not constants; see config.Config.
type Level string

const (
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
	LevelDiamond  Level = "Diamond"
)

// LevelFor maps a balance onto a band given ascending thresholds
// (silver, gold, platinum, diamond). Negative balances are Bronze.
func LevelFor(totalPoints int, thresholds [4]int) Level {
	switch {
	case totalPoints >= thresholds[3]:
		return LevelDiamond
	case totalPoints >= thresholds[2]:
		return LevelPlatinum
	case totalPoints >= thresholds[1]:
		return LevelGold
	case totalPoints >= thresholds[0]:
		return LevelSilver
	default:
		return LevelBronze
	}
}

// UserPoints is the single balance record per user. TotalPoints is only
// mutated through point transactions; it may go negative.
type UserPoints struct {
	Model
	UserID      uint  `json:"user_id" gorm:"uniqueIndex;not null"`
	User        *User `json:"-" gorm:"foreignKey:UserID"`
	TotalPoints int   `json:"total_points"`
}

const (
	TransactionAward  = "award"
	TransactionDeduct = "deduct"
)

// PointTransaction is one justified ledger mutation. The unique index on
// IncidentID is what makes a second award/deduct for the same incident
// fail instead of double-applying.
type PointTransaction struct {
	Model
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	IncidentID uuid.UUID `json:"incident_id" gorm:"type:uuid;not null;uniqueIndex"`
	Type       string    `json:"type" gorm:"type:varchar(8);not null"`
	Amount     int       `json:"amount" gorm:"not null"`
	Reason     string    `json:"reason" gorm:"type:varchar(500);not null"`
}

// LeaderboardEntry is one row of the ranked view. Rank is always the
// position in the global descending order, even when a level filter
// narrows the visible set.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
	Level       Level  `json:"level"`
}

// Pagination echoes paging state back to the client.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
}
