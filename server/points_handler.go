package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/server/response"
)

func (s *Server) handleMarkFake() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("incidentID"))
		if !ok {
			return
		}
		var request models.MarkFakeRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.IncidentService.MarkFake(user, id, request.Reason, request.PointsToDeduct); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident marked fake", http.StatusOK, gin.H{
			"status":          models.StatusFake,
			"points_deducted": request.PointsToDeduct,
		}, nil)
	}
}

func (s *Server) handleApproveGenuine() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("incidentID"))
		if !ok {
			return
		}
		var request models.ApproveGenuineRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.IncidentService.ApproveGenuine(user, id, request.CyberCellNotes, request.PointsToAward); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident approved as genuine", http.StatusOK, gin.H{
			"status":         models.StatusResolved,
			"points_awarded": request.PointsToAward,
		}, nil)
	}
}

func (s *Server) handleGetUserPoints() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		points, level, apiErr := s.PointsService.GetUserPoints(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		rank, rankErr := s.LeaderboardService.GetRank(user.ID)
		if rankErr != nil {
			// A fresh zero-point record may not be ranked yet.
			rank = 0
		}

		response.JSON(c, "", http.StatusOK, gin.H{
			"userPoints": gin.H{
				"user_id":      points.UserID,
				"total_points": points.TotalPoints,
				"level":        level,
			},
			"rank": rank,
		}, nil)
	}
}

func (s *Server) handleGetTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		txns, apiErr := s.PointsService.GetTransactions(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, txns, nil)
	}
}

func (s *Server) handleGetLeaderboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		pageSize := queryInt(c, "limit", 20)

		var (
			entries    []models.LeaderboardEntry
			pagination *models.Pagination
			apiErr     *errs.Error
		)
		if level := c.Query("level"); level != "" {
			entries, pagination, apiErr = s.LeaderboardService.GetPageByLevel(models.Level(level), page, pageSize)
		} else {
			entries, pagination, apiErr = s.LeaderboardService.GetPage(page, pageSize)
		}
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"leaderboard": entries,
			"pagination":  pagination,
		}, nil)
	}
}

func (s *Server) handleGetTotalBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		total, apiErr := s.PointsService.TotalBalance()
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"total_balance": total}, nil)
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
