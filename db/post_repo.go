package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

// ErrDuplicateVote is returned when a user repeats the same vote on a post.
var ErrDuplicateVote = errors.New("vote already recorded")

type PostRepository interface {
	SavePost(post *models.CommunityPost) (*models.CommunityPost, error)
	GetPostByID(id uuid.UUID) (*models.CommunityPost, error)
	GetPosts(page, pageSize int) ([]models.CommunityPost, int64, error)
	AddComment(comment *models.PostComment) error
	Vote(postID uuid.UUID, userID uint, value int) error
	IncrementViews(id uuid.UUID) error
}

type postRepo struct {
	DB *gorm.DB
}

func NewPostRepo(db *GormDB) PostRepository {
	return &postRepo{db.DB}
}

func (r *postRepo) SavePost(post *models.CommunityPost) (*models.CommunityPost, error) {
	if err := r.DB.Create(post).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.create post")
	}
	return post, nil
}

func (r *postRepo) GetPostByID(id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.DB.Preload("Comments").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) GetPosts(page, pageSize int) ([]models.CommunityPost, int64, error) {
	var total int64
	if err := r.DB.Model(&models.CommunityPost{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "gorm.count posts")
	}

	var posts []models.CommunityPost
	offset := (page - 1) * pageSize
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&posts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "gorm.list posts")
	}
	return posts, total, nil
}

func (r *postRepo) AddComment(comment *models.PostComment) error {
	return r.DB.Create(comment).Error
}

// Vote records one user's vote on one post. A repeat of the same direction
// fails with ErrDuplicateVote; a switched direction moves the vote between
// the two counters. Counter updates and the vote row ride one transaction.
func (r *postRepo) Vote(postID uuid.UUID, userID uint, value int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostVote
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if existing.Value == value {
				return ErrDuplicateVote
			}
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return errors.Wrap(err, "gorm.update vote")
			}
			// Moving a vote swaps one counter for the other.
			if value > 0 {
				return tx.Model(&models.CommunityPost{}).Where("id = ?", postID).
					Updates(map[string]interface{}{
						"upvotes":   gorm.Expr("upvotes + 1"),
						"downvotes": gorm.Expr("downvotes - 1"),
					}).Error
			}
			return tx.Model(&models.CommunityPost{}).Where("id = ?", postID).
				Updates(map[string]interface{}{
					"upvotes":   gorm.Expr("upvotes - 1"),
					"downvotes": gorm.Expr("downvotes + 1"),
				}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.PostVote{PostID: postID, UserID: userID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return errors.Wrap(err, "gorm.create vote")
			}
			column := "upvotes"
			if value < 0 {
				column = "downvotes"
			}
			return tx.Model(&models.CommunityPost{}).Where("id = ?", postID).
				Update(column, gorm.Expr(column+" + 1")).Error
		default:
			return errors.Wrap(err, "gorm.find vote")
		}
	})
}

func (r *postRepo) IncrementViews(id uuid.UUID) error {
	return r.DB.Model(&models.CommunityPost{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}
