package mailer

import (
	"context"
)

// Provider represents an email delivery backend
type Provider interface {
	Send(ctx context.Context, message *Message) error
	GetName() string
}

// Message represents an email to be sent
type Message struct {
	To       string
	Subject  string
	Body     string
	BodyHTML string
	From     string
	FromName string
	ReplyTo  string
}
