package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
)

// PostService handles community posts: creation, voting, comments and the
// view counter.
type PostService interface {
	CreatePost(actor *models.User, req *models.CreatePostRequest) (*models.CommunityPost, *errs.Error)
	GetPost(id uuid.UUID) (*models.CommunityPost, *errs.Error)
	ListPosts(page, pageSize int) ([]models.CommunityPost, *models.Pagination, *errs.Error)
	Vote(actor *models.User, postID uuid.UUID, value int) *errs.Error
	AddComment(actor *models.User, postID uuid.UUID, req *models.CommentRequest) (*models.PostComment, *errs.Error)
}

type postService struct {
	Config   *config.Config
	postRepo db.PostRepository
}

// NewPostService instantiates a PostService.
func NewPostService(postRepo db.PostRepository, conf *config.Config) PostService {
	return &postService{
		Config:   conf,
		postRepo: postRepo,
	}
}

func (s *postService) CreatePost(actor *models.User, req *models.CreatePostRequest) (*models.CommunityPost, *errs.Error) {
	if err := models.ValidateWhiteSpaces(req); err != nil {
		return nil, errs.ValidationError(err.Error())
	}
	if !models.IsValidScamType(req.ScamType) {
		return nil, errs.ValidationError(fmt.Sprintf("unknown scam type %q", req.ScamType))
	}

	post := &models.CommunityPost{
		ID:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		ScamType:    req.ScamType,
		Region:      req.Region,
		Pincode:     req.Pincode,
		IsAnonymous: req.IsAnonymous,
		Tags:        req.Tags,
		AuthorID:    actor.ID,
	}
	saved, err := s.postRepo.SavePost(post)
	if err != nil {
		log.Printf("CreatePost error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return saved, nil
}

// GetPost fetches one post and bumps its view counter.
func (s *postService) GetPost(id uuid.UUID) (*models.CommunityPost, *errs.Error) {
	post, err := s.postRepo.GetPostByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NotFound("post not found")
		}
		log.Printf("GetPost error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	if err := s.postRepo.IncrementViews(id); err != nil {
		log.Printf("IncrementViews error: %v", err)
	}
	post.Views++
	return post, nil
}

func (s *postService) ListPosts(page, pageSize int) ([]models.CommunityPost, *models.Pagination, *errs.Error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	posts, total, err := s.postRepo.GetPosts(page, pageSize)
	if err != nil {
		log.Printf("ListPosts error: %v", err)
		return nil, nil, errs.ErrInternalServerError
	}
	return posts, paginate(page, pageSize, total), nil
}

// Vote records one vote per user per post. Repeating the same direction is
// rejected; switching direction moves the vote.
func (s *postService) Vote(actor *models.User, postID uuid.UUID, value int) *errs.Error {
	if value != 1 && value != -1 {
		return errs.ValidationError("vote value must be 1 or -1")
	}

	if _, err := s.postRepo.GetPostByID(postID); err != nil {
		if isNotFound(err) {
			return errs.NotFound("post not found")
		}
		log.Printf("Vote error: %v", err)
		return errs.ErrInternalServerError
	}

	if err := s.postRepo.Vote(postID, actor.ID, value); err != nil {
		if errors.Is(err, db.ErrDuplicateVote) {
			return errs.AlreadyProcessed("vote already recorded for this post")
		}
		log.Printf("Vote error: %v", err)
		return errs.ErrInternalServerError
	}
	return nil
}

func (s *postService) AddComment(actor *models.User, postID uuid.UUID, req *models.CommentRequest) (*models.PostComment, *errs.Error) {
	if err := models.ValidateWhiteSpaces(req); err != nil {
		return nil, errs.ValidationError(err.Error())
	}
	if req.Content == "" {
		return nil, errs.ValidationError("comment cannot be empty")
	}

	if _, err := s.postRepo.GetPostByID(postID); err != nil {
		if isNotFound(err) {
			return nil, errs.NotFound("post not found")
		}
		log.Printf("AddComment error: %v", err)
		return nil, errs.ErrInternalServerError
	}

	authorName := actor.Username
	if req.IsAnonymous {
		authorName = "anonymous"
	}
	comment := &models.PostComment{
		PostID:      postID,
		AuthorID:    actor.ID,
		AuthorName:  authorName,
		IsAnonymous: req.IsAnonymous,
		Content:     req.Content,
	}
	if err := s.postRepo.AddComment(comment); err != nil {
		log.Printf("AddComment error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return comment, nil
}
