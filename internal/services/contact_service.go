package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// ContactService implements the public contact form and the admin inbox.
type ContactService struct {
	contactRepo   repository.ContactRepository
	notifications *NotificationService
	logger        *logrus.Entry
}

// NewContactService creates a new contact service
func NewContactService(contactRepo repository.ContactRepository, notifications *NotificationService, logger *logrus.Logger) *ContactService {
	return &ContactService{
		contactRepo:   contactRepo,
		notifications: notifications,
		logger:        logger.WithField("component", "services.contact"),
	}
}

// Submit stores a contact form message and sends both the customer
// acknowledgement and the internal notification.
func (s *ContactService) Submit(ctx context.Context, req *models.SubmitContactRequest) (*models.ContactMessage, error) {
	message := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Status:  models.ContactStatusNew,
	}
	if req.Subject != "" {
		message.Subject = req.Subject
	} else {
		message.Subject = "Contact Form Submission"
	}

	if err := s.contactRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.notifications.SendContactConfirmation(message)
	s.notifications.SendContactNotification(message)
	return message, nil
}

// List returns the paginated admin inbox, optionally filtered by status.
func (s *ContactService) List(ctx context.Context, status string, page, pageSize int) (*models.ContactListResponse, error) {
	messages, total, err := s.contactRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if messages == nil {
		messages = []models.ContactMessage{}
	}
	return &models.ContactListResponse{
		Messages: messages,
		Page:     page,
		Pages:    models.PageCount(total, pageSize),
		Total:    total,
	}, nil
}

// Get returns one message and marks a new one as read.
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	message, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Contact message")
		}
		return nil, err
	}

	if message.Status == models.ContactStatusNew {
		message.Status = models.ContactStatusRead
		if err := s.contactRepo.Update(ctx, message); err != nil {
			s.logger.WithError(err).WithField("message_id", id).Warn("Failed to mark contact message as read")
		}
	}
	return message, nil
}

// Respond records an admin reply and emails it to the original sender.
func (s *ContactService) Respond(ctx context.Context, adminID uuid.UUID, id uuid.UUID, response string) (*models.ContactMessage, error) {
	message, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Contact message")
		}
		return nil, err
	}

	now := time.Now()
	message.Response = response
	message.Status = models.ContactStatusResponded
	message.RespondedAt = &now
	message.RespondedBy = &adminID
	if err := s.contactRepo.Update(ctx, message); err != nil {
		return nil, err
	}

	s.notifications.SendContactResponse(message)
	return message, nil
}

// Delete removes a message from the inbox.
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contactRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Contact message")
		}
		return err
	}
	return s.contactRepo.Delete(ctx, id)
}
