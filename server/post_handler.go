package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/server/response"
)

func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var request models.CreatePostRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		post, apiErr := s.PostService.CreatePost(user, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "post created", http.StatusCreated, post, nil)
	}
}

func (s *Server) handleGetPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		pageSize := queryInt(c, "limit", 20)

		posts, pagination, apiErr := s.PostService.ListPosts(page, pageSize)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"posts":      posts,
			"pagination": pagination,
		}, nil)
	}
}

func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parsePostID(c, c.Param("id"))
		if !ok {
			return
		}
		post, apiErr := s.PostService.GetPost(id)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "", http.StatusOK, post, nil)
	}
}

func (s *Server) handleVotePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parsePostID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.VoteRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		if apiErr := s.PostService.Vote(user, id, request.Value); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "vote recorded", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleAddComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := parsePostID(c, c.Param("id"))
		if !ok {
			return
		}
		var request models.CommentRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		comment, apiErr := s.PostService.AddComment(user, id, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "comment added", http.StatusCreated, comment, nil)
	}
}

func parsePostID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid post id"))
		return uuid.Nil, false
	}
	return id, true
}
