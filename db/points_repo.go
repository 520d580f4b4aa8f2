package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

type PointsRepository interface {
	GetUserPoints(userID uint) (*models.UserPoints, error)
	HasTransactionForIncident(incidentID uuid.UUID) (bool, error)
	GetTransactionsByUser(userID uint) ([]models.PointTransaction, error)
	ListRanked() ([]models.UserPoints, error)
	CountUsers() (int64, error)
	SumAllBalances() (int, error)
}

type pointsRepo struct {
	DB *gorm.DB
}

func NewPointsRepo(db *GormDB) PointsRepository {
	return &pointsRepo{db.DB}
}

// GetUserPoints fetches the balance record for a user, creating a zero
// record the first time it is asked for.
func (r *pointsRepo) GetUserPoints(userID uint) (*models.UserPoints, error) {
	var points models.UserPoints
	err := r.DB.Where("user_id = ?", userID).First(&points).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			points = models.UserPoints{UserID: userID, TotalPoints: 0}
			if err := r.DB.Create(&points).Error; err != nil {
				return nil, errors.Wrap(err, "gorm.create user points")
			}
			return &points, nil
		}
		return nil, errors.Wrap(err, "gorm.find user points")
	}
	return &points, nil
}

func (r *pointsRepo) HasTransactionForIncident(incidentID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.Model(&models.PointTransaction{}).
		Where("incident_id = ?", incidentID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "gorm.count transactions")
	}
	return count > 0, nil
}

func (r *pointsRepo) GetTransactionsByUser(userID uint) ([]models.PointTransaction, error) {
	var txns []models.PointTransaction
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&txns).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.list transactions")
	}
	return txns, nil
}

// ListRanked returns every balance record in leaderboard order: points
// descending, ties broken by earliest record creation then user id, so the
// order is deterministic and reproducible.
func (r *pointsRepo) ListRanked() ([]models.UserPoints, error) {
	var all []models.UserPoints
	err := r.DB.Preload("User").
		Order("total_points DESC, created_at ASC, user_id ASC").
		Find(&all).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.list ranked points")
	}
	return all, nil
}

func (r *pointsRepo) CountUsers() (int64, error) {
	var count int64
	err := r.DB.Model(&models.UserPoints{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "gorm.count user points")
	}
	return count, nil
}

func (r *pointsRepo) SumAllBalances() (int, error) {
	var total int
	err := r.DB.Model(&models.UserPoints{}).
		Select("COALESCE(SUM(total_points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "gorm.sum balances")
	}
	return total, nil
}
