package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
)

const (
	leaderboardCacheKey = "scamwatch:leaderboard"
	leaderboardCacheTTL = 30 * time.Second
)

// LeaderboardService produces the globally ranked view over all balances.
// Ranks are always positions in the full descending order; a level filter
// narrows the visible rows but never renumbers them.
type LeaderboardService interface {
	GetPage(page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, *errs.Error)
	GetPageByLevel(level models.Level, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, *errs.Error)
	GetRank(userID uint) (int, *errs.Error)
	Invalidate()
}

type leaderboardService struct {
	Config     *config.Config
	pointsRepo db.PointsRepository
	cache      *redis.Client
}

// NewLeaderboardService instantiates a LeaderboardService. cache may be
// nil, in which case every read goes to the database.
func NewLeaderboardService(pointsRepo db.PointsRepository, cache *redis.Client, conf *config.Config) LeaderboardService {
	return &leaderboardService{
		Config:     conf,
		pointsRepo: pointsRepo,
		cache:      cache,
	}
}

func (s *leaderboardService) GetPage(page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, *errs.Error) {
	ranked, apiErr := s.ranked()
	if apiErr != nil {
		return nil, nil, apiErr
	}
	return pageOf(ranked, page, pageSize)
}

func (s *leaderboardService) GetPageByLevel(level models.Level, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, *errs.Error) {
	ranked, apiErr := s.ranked()
	if apiErr != nil {
		return nil, nil, apiErr
	}
	// Filter AFTER ranking: entries keep their global rank numbers.
	filtered := make([]models.LeaderboardEntry, 0, len(ranked))
	for _, e := range ranked {
		if e.Level == level {
			filtered = append(filtered, e)
		}
	}
	return pageOf(filtered, page, pageSize)
}

func (s *leaderboardService) GetRank(userID uint) (int, *errs.Error) {
	ranked, apiErr := s.ranked()
	if apiErr != nil {
		return 0, apiErr
	}
	for _, e := range ranked {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, errs.NotFound("user has no points record")
}

// Invalidate drops the cached ordering after a ledger mutation.
func (s *leaderboardService) Invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(context.Background(), leaderboardCacheKey).Err(); err != nil {
		log.Printf("leaderboard cache invalidate: %v", err)
	}
}

// ranked returns every entry in global order with 1-based ranks assigned.
func (s *leaderboardService) ranked() ([]models.LeaderboardEntry, *errs.Error) {
	if entries, ok := s.fromCache(); ok {
		return entries, nil
	}

	all, err := s.pointsRepo.ListRanked()
	if err != nil {
		log.Printf("leaderboard query: %v", err)
		return nil, errs.ErrInternalServerError
	}

	thresholds := s.Config.LevelThresholds()
	entries := make([]models.LeaderboardEntry, len(all))
	for i, p := range all {
		username := ""
		if p.User != nil {
			username = p.User.Username
		}
		entries[i] = models.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.UserID,
			Username:    username,
			TotalPoints: p.TotalPoints,
			Level:       models.LevelFor(p.TotalPoints, thresholds),
		}
	}

	s.toCache(entries)
	return entries, nil
}

func (s *leaderboardService) fromCache() ([]models.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(context.Background(), leaderboardCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *leaderboardService) toCache(entries []models.LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(context.Background(), leaderboardCacheKey, raw, leaderboardCacheTTL).Err(); err != nil {
		log.Printf("leaderboard cache set: %v", err)
	}
}

func pageOf(entries []models.LeaderboardEntry, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, *errs.Error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	total := int64(len(entries))
	start := (page - 1) * pageSize
	if start > len(entries) {
		start = len(entries)
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], paginate(page, pageSize, total), nil
}
