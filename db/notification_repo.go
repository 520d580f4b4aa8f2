package db

import (
	"github.com/pkg/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(n *models.Notification) error
	ListByUser(userID uint) ([]models.Notification, error)
	MarkRead(id, userID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (r *notificationRepo) Create(n *models.Notification) error {
	return r.DB.Create(n).Error
}

func (r *notificationRepo) ListByUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.list notifications")
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(id, userID uint) error {
	res := r.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
