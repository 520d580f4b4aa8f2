package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/server/response"
)

func (s *Server) handleCreateIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var request models.CreateIncidentRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		incident, apiErr := s.IncidentService.CreateIncident(user, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident reported", http.StatusCreated, incident, nil)
	}
}

func (s *Server) handleGetIncidents() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := db.IncidentFilter{
			Status:   models.IncidentStatus(c.Query("status")),
			Severity: models.Severity(c.Query("severity")),
			Pincode:  c.Query("pincode"),
		}
		if c.Query("mine") == "true" {
			if user := currentUser(c); user != nil {
				filter.UserID = user.ID
			}
		}
		page := queryInt(c, "page", 1)
		pageSize := queryInt(c, "limit", 20)

		incidents, pagination, apiErr := s.IncidentService.ListIncidents(filter, page, pageSize)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"incidents":  incidents,
			"pagination": pagination,
		}, nil)
	}
}

func (s *Server) handleGetIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		incident, apiErr := s.IncidentService.GetIncident(id)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, incident, nil)
	}
}

func (s *Server) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.StatusUpdateRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.IncidentService.TransitionStatus(user, id, request.Status); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "status updated", http.StatusOK, gin.H{"status": request.Status}, nil)
	}
}

func (s *Server) handleResolveIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		if apiErr := s.IncidentService.Resolve(user, id); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident resolved", http.StatusOK, gin.H{"status": models.StatusResolved}, nil)
	}
}

func (s *Server) handleAssignIncident() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.AssignRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.IncidentService.AssignIncident(user, id, request.AssigneeID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "incident assigned", http.StatusOK, gin.H{"assigned_to": request.AssigneeID}, nil)
	}
}

func (s *Server) handleAppendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.MessageRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		msg, apiErr := s.IncidentService.AppendMessage(user, id, request.Message)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "message added", http.StatusCreated, msg, nil)
	}
}

func (s *Server) handleAttachFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parseIncidentID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.FeedbackRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.IncidentService.AttachFeedback(user, id, &request); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "feedback recorded", http.StatusCreated, nil, nil)
	}
}

func (s *Server) handleHeatmap() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, apiErr := s.IncidentService.Heatmap()
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, counts, nil)
	}
}

func parseIncidentID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid incident id"))
		return uuid.Nil, false
	}
	return id, true
}
