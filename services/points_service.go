package services

import (
	"log"

	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
)

// PointsService reads the ledger. Mutations happen inside the incident
// lifecycle transaction (see IncidentService.MarkFake / ApproveGenuine) so
// a status change and its point movement can never be applied separately.
type PointsService interface {
	GetBalance(userID uint) (int, models.Level, *errs.Error)
	GetUserPoints(userID uint) (*models.UserPoints, models.Level, *errs.Error)
	GetTransactions(userID uint) ([]models.PointTransaction, *errs.Error)
	TotalBalance() (int, *errs.Error)
}

type pointsService struct {
	Config     *config.Config
	pointsRepo db.PointsRepository
}

// NewPointsService instantiates a PointsService.
func NewPointsService(pointsRepo db.PointsRepository, conf *config.Config) PointsService {
	return &pointsService{
		Config:     conf,
		pointsRepo: pointsRepo,
	}
}

func (s *pointsService) GetBalance(userID uint) (int, models.Level, *errs.Error) {
	points, _, apiErr := s.GetUserPoints(userID)
	if apiErr != nil {
		return 0, "", apiErr
	}
	return points.TotalPoints, models.LevelFor(points.TotalPoints, s.Config.LevelThresholds()), nil
}

func (s *pointsService) GetUserPoints(userID uint) (*models.UserPoints, models.Level, *errs.Error) {
	points, err := s.pointsRepo.GetUserPoints(userID)
	if err != nil {
		log.Printf("GetUserPoints error: %v", err)
		return nil, "", errs.ErrInternalServerError
	}
	return points, models.LevelFor(points.TotalPoints, s.Config.LevelThresholds()), nil
}

func (s *pointsService) GetTransactions(userID uint) ([]models.PointTransaction, *errs.Error) {
	txns, err := s.pointsRepo.GetTransactionsByUser(userID)
	if err != nil {
		log.Printf("GetTransactions error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return txns, nil
}

func (s *pointsService) TotalBalance() (int, *errs.Error) {
	total, err := s.pointsRepo.SumAllBalances()
	if err != nil {
		log.Printf("TotalBalance error: %v", err)
		return 0, errs.ErrInternalServerError
	}
	return total, nil
}
