package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/server/response"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.SignupRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		user, apiErr := s.AuthService.SignupUser(&request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "signup successful", http.StatusCreated, models.UserResponse{
			ID:       user.ID,
			Fullname: user.Fullname,
			Username: user.Username,
			Email:    user.Email,
			RoleName: models.RoleUser,
		}, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.LoginRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, _ := c.Get("access_token")
		token, _ := accessToken.(string)

		if apiErr := s.AuthService.LogoutUser(token); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		response.JSON(c, "", http.StatusOK, models.UserResponse{
			ID:       user.ID,
			Fullname: user.Fullname,
			Username: user.Username,
			Email:    user.Email,
			RoleName: user.RoleName(),
		}, nil)
	}
}
