package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
)

// NotificationService stores per-user notifications; clients fetch them
// over REST. A failed write is logged, never propagated — a lost
// notification must not fail a lifecycle transition.
type NotificationService interface {
	NotifyStatusChange(userID uint, incidentID uuid.UUID, title string, to models.IncidentStatus)
	ListForUser(userID uint) ([]models.Notification, *errs.Error)
	MarkRead(id, userID uint) *errs.Error
}

type notificationService struct {
	notificationRepo db.NotificationRepository
}

// NewNotificationService instantiates a NotificationService.
func NewNotificationService(notificationRepo db.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) NotifyStatusChange(userID uint, incidentID uuid.UUID, title string, to models.IncidentStatus) {
	n := &models.Notification{
		UserID:     userID,
		IncidentID: incidentID,
		Title:      fmt.Sprintf("Your report %q is now %s", title, to),
		Body:       fmt.Sprintf("The status of your incident report changed to %s.", to),
	}
	if err := s.notificationRepo.Create(n); err != nil {
		log.Printf("notify status change: %v", err)
	}
}

func (s *notificationService) ListForUser(userID uint) ([]models.Notification, *errs.Error) {
	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		log.Printf("ListForUser error: %v", err)
		return nil, errs.ErrInternalServerError
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(id, userID uint) *errs.Error {
	if err := s.notificationRepo.MarkRead(id, userID); err != nil {
		if isNotFound(err) {
			return errs.NotFound("notification not found")
		}
		log.Printf("MarkRead error: %v", err)
		return errs.ErrInternalServerError
	}
	return nil
}
