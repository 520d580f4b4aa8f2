package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/techagentng/scamwatch/models"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.GET("/incidents/heatmap", s.handleHeatmap())
	apirouter.GET("/posts", s.handleGetPosts())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())

	authorized.POST("/incidents", limitReportSubmission(), s.handleCreateIncident())
	authorized.GET("/incidents", s.handleGetIncidents())
	authorized.GET("/incidents/:id", s.handleGetIncident())
	authorized.PUT("/incidents/:id/status", RequireRoles(models.RoleAuthority, models.RoleAdmin), s.handleUpdateStatus())
	authorized.PUT("/incidents/:id/assign", RequireRoles(models.RoleAuthority, models.RoleAdmin), s.handleAssignIncident())
	authorized.PUT("/incidents/:id/message", RequireRoles(models.RoleAuthority, models.RoleAdmin), s.handleAppendMessage())
	authorized.PUT("/incidents/:id/resolve", RequireRoles(models.RoleAuthority, models.RoleAdmin), s.handleResolveIncident())
	authorized.POST("/incidents/:id/feedback", s.handleAttachFeedback())

	authorized.POST("/points/mark-fake/:incidentID", RequireRoles(models.RoleAdmin), s.handleMarkFake())
	authorized.POST("/points/approve-genuine/:incidentID", RequireRoles(models.RoleAuthority, models.RoleAdmin), s.handleApproveGenuine())
	authorized.GET("/points/user-points", s.handleGetUserPoints())
	authorized.GET("/points/transactions", s.handleGetTransactions())
	authorized.GET("/points/leaderboard", s.handleGetLeaderboard())
	authorized.GET("/points/total", RequireRoles(models.RoleAdmin), s.handleGetTotalBalance())

	authorized.POST("/posts", s.handleCreatePost())
	authorized.GET("/posts/:id", s.handleGetPost())
	authorized.POST("/posts/:id/vote", s.handleVotePost())
	authorized.POST("/posts/:id/comments", s.handleAddComment())

	authorized.GET("/notifications", s.handleGetNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())
}
