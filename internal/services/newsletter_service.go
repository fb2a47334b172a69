package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// NewsletterService implements newsletter subscriptions and admin sends.
type NewsletterService struct {
	subscriberRepo repository.NewsletterRepository
	notifications  *NotificationService
	logger         *logrus.Entry
}

// NewNewsletterService creates a new newsletter service
func NewNewsletterService(subscriberRepo repository.NewsletterRepository, notifications *NotificationService, logger *logrus.Logger) *NewsletterService {
	return &NewsletterService{
		subscriberRepo: subscriberRepo,
		notifications:  notifications,
		logger:         logger.WithField("component", "services.newsletter"),
	}
}

// Subscribe adds an email to the list and sends the welcome email.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.subscriberRepo.GetByEmail(ctx, email); err == nil {
		return NewConflictError("subscriber", "Email is already subscribed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	subscriber := &models.NewsletterSubscriber{Email: email, IsActive: true}
	if err := s.subscriberRepo.Create(ctx, subscriber); err != nil {
		return err
	}

	s.notifications.SendNewsletterWelcome(email)
	return nil
}

// Unsubscribe removes an email from the list.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	existed, err := s.subscriberRepo.DeleteByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !existed {
		return NewNotFoundError("Subscriber")
	}
	return nil
}

// ListSubscribers returns the paginated admin subscriber listing.
func (s *NewsletterService) ListSubscribers(ctx context.Context, page, pageSize int) (*models.SubscriberListResponse, error) {
	subscribers, total, err := s.subscriberRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if subscribers == nil {
		subscribers = []models.NewsletterSubscriber{}
	}
	return &models.SubscriberListResponse{
		Subscribers: subscribers,
		Page:        page,
		Pages:       models.PageCount(total, pageSize),
		Total:       total,
	}, nil
}

// Send queues one newsletter issue for every subscriber and returns the
// recipient count. Delivery itself is asynchronous.
func (s *NewsletterService) Send(ctx context.Context, req *models.SendNewsletterRequest) (int, error) {
	subscribers, err := s.subscriberRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(subscribers) == 0 {
		return 0, NewValidationError("No subscribers to send to")
	}

	s.notifications.SendNewsletterIssue(subscribers, req.Subject, req.Content)
	s.logger.WithFields(logrus.Fields{
		"subject":    req.Subject,
		"recipients": len(subscribers),
	}).Info("Newsletter queued")
	return len(subscribers), nil
}
