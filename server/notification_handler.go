package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/server/response"
)

func (s *Server) handleGetNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		notifications, apiErr := s.NotificationService.ListForUser(user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, notifications, nil)
	}
}

func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid notification id"))
			return
		}

		if apiErr := s.NotificationService.MarkRead(uint(id), user.ID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "notification read", http.StatusOK, nil, nil)
	}
}
