package services

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/trendora/storefront-api/internal/mailer"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/templates"
)

// NotificationService renders email templates and hands them to the async
// dispatcher. All sends are fire-and-forget; a rendering failure falls back
// to a minimal inline body so the email still goes out, and is never
// surfaced to the caller.
type NotificationService struct {
	dispatcher  *mailer.Dispatcher
	renderer    *templates.Renderer
	logger      *logrus.Entry
	frontendURL string
	adminEmail  string
}

// NewNotificationService creates a new notification service
func NewNotificationService(dispatcher *mailer.Dispatcher, renderer *templates.Renderer, logger *logrus.Logger, frontendURL, adminEmail string) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		renderer:    renderer,
		logger:      logger.WithField("component", "services.notification"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		adminEmail:  adminEmail,
	}
}

func (s *NotificationService) send(to, templateName string, data *templates.EmailData) {
	body, err := s.renderer.Render(templateName, data)
	if err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("Failed to render email, using fallback body")
		body = fallbackBody(data)
	}
	s.dispatcher.Enqueue(&mailer.Message{
		To:       to,
		Subject:  data.Subject,
		BodyHTML: body,
	})
}

// fallbackBody builds the minimal inline layout used when a template cannot
// be rendered. The message carries the subject, greeting, and whichever
// action link the template would have shown.
func fallbackBody(data *templates.EmailData) string {
	heading := data.Subject
	if heading == "" {
		heading = "Trendora"
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px;">`)
	fmt.Fprintf(&b, `<h1 style="color:#333;">%s</h1>`, html.EscapeString(heading))
	if data.Name != "" {
		fmt.Fprintf(&b, "<p>Hello %s,</p>", html.EscapeString(data.Name))
	}
	b.WriteString("<p>Thank you for using our service.</p>")
	link := data.VerificationLink
	if link == "" {
		link = data.ResetURL
	}
	if link != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Click Here</a></p>`, html.EscapeString(link))
	}
	b.WriteString("<p>Best regards,<br>The Trendora Team</p></div>")
	return b.String()
}

// SendWelcome sends the signup email with the verification link.
func (s *NotificationService) SendWelcome(user *models.User, verificationToken string) {
	s.send(user.Email, "welcome", &templates.EmailData{
		Subject:          "Welcome to Trendora",
		Preheader:        "Confirm your email to get started",
		Name:             user.Name,
		Email:            user.Email,
		VerificationLink: fmt.Sprintf("%s/verify-email/%s", s.frontendURL, verificationToken),
	})
}

// SendPasswordReset sends the reset link. The plain token goes in the link;
// only its hash is stored.
func (s *NotificationService) SendPasswordReset(user *models.User, resetToken string) {
	s.send(user.Email, "password_reset", &templates.EmailData{
		Subject:   "Reset your password",
		Preheader: "Your password reset link expires in 1 hour",
		Name:      user.Name,
		Email:     user.Email,
		ResetURL:  fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken),
	})
}

// SendPasswordChanged confirms a completed password change.
func (s *NotificationService) SendPasswordChanged(user *models.User) {
	s.send(user.Email, "password_changed", &templates.EmailData{
		Subject: "Your password was changed",
		Name:    user.Name,
		Email:   user.Email,
	})
}

// SendOrderConfirmation sends the order receipt.
func (s *NotificationService) SendOrderConfirmation(user *models.User, order *models.Order) {
	lines := make([]templates.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, templates.OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    fmt.Sprintf("%.2f", item.Price),
		})
	}
	s.send(user.Email, "order_confirmation", &templates.EmailData{
		Subject:       fmt.Sprintf("Order confirmation %s", shortOrderRef(order)),
		Preheader:     "Thanks for your order!",
		Name:          user.Name,
		Email:         user.Email,
		OrderNumber:   order.ID.String(),
		OrderDate:     order.CreatedAt.Format("January 2, 2006"),
		Items:         lines,
		ItemsPrice:    fmt.Sprintf("%.2f", order.ItemsPrice),
		TaxPrice:      fmt.Sprintf("%.2f", order.TaxPrice),
		ShippingPrice: fmt.Sprintf("%.2f", order.ShippingPrice),
		TotalPrice:    fmt.Sprintf("%.2f", order.TotalPrice),
	})
}

// SendOrderCancelled confirms an order cancellation.
func (s *NotificationService) SendOrderCancelled(user *models.User, order *models.Order) {
	s.send(user.Email, "order_cancelled", &templates.EmailData{
		Subject:     fmt.Sprintf("Order cancelled %s", shortOrderRef(order)),
		Name:        user.Name,
		Email:       user.Email,
		OrderNumber: order.ID.String(),
	})
}

// SendNewsletterWelcome confirms a newsletter signup.
func (s *NotificationService) SendNewsletterWelcome(email string) {
	s.send(email, "newsletter_welcome", &templates.EmailData{
		Subject: "Welcome to the Trendora newsletter",
		Email:   email,
	})
}

// SendNewsletterIssue fans one newsletter issue out to every subscriber.
// Content is admin-authored HTML and rendered unescaped.
func (s *NotificationService) SendNewsletterIssue(subscribers []models.NewsletterSubscriber, subject, content string) {
	for _, sub := range subscribers {
		s.send(sub.Email, "newsletter", &templates.EmailData{
			Subject: subject,
			Email:   sub.Email,
			Content: template.HTML(content),
		})
	}
}

// SendContactConfirmation acknowledges a contact form submission.
func (s *NotificationService) SendContactConfirmation(message *models.ContactMessage) {
	s.send(message.Email, "contact_confirmation", &templates.EmailData{
		Subject:        "We received your message",
		Name:           message.Name,
		Email:          message.Email,
		ContactSubject: message.Subject,
		ContactMessage: message.Message,
	})
}

// SendContactNotification alerts the store team to a new contact message.
func (s *NotificationService) SendContactNotification(message *models.ContactMessage) {
	if s.adminEmail == "" {
		return
	}
	s.send(s.adminEmail, "contact_notification", &templates.EmailData{
		Subject:        fmt.Sprintf("New contact message: %s", message.Subject),
		Name:           message.Name,
		Email:          message.Email,
		ContactSubject: message.Subject,
		ContactMessage: message.Message,
	})
}

// SendContactResponse delivers an admin reply to the original sender.
func (s *NotificationService) SendContactResponse(message *models.ContactMessage) {
	s.send(message.Email, "contact_response", &templates.EmailData{
		Subject:         fmt.Sprintf("Re: %s", message.Subject),
		Name:            message.Name,
		Email:           message.Email,
		ContactSubject:  message.Subject,
		ContactMessage:  message.Message,
		ContactResponse: message.Response,
	})
}

// shortOrderRef renders the truncated order id used in email subjects.
func shortOrderRef(order *models.Order) string {
	id := order.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return "#" + id
}
