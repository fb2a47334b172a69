package mailer

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProvider struct {
	mu       sync.Mutex
	messages []*Message
}

func (p *captureProvider) Send(ctx context.Context, message *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *captureProvider) GetName() string { return "capture" }

func (p *captureProvider) sent() []*Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Message(nil), p.messages...)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	provider := &captureProvider{}
	dispatcher := NewDispatcher(provider, quietLogger())

	dispatcher.Enqueue(&Message{To: "a@example.com", Subject: "first"})
	dispatcher.Enqueue(&Message{To: "b@example.com", Subject: "second"})
	dispatcher.Close()

	sent := provider.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@example.com", sent[0].To)
	assert.Equal(t, "second", sent[1].Subject)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(&captureProvider{}, quietLogger())
	dispatcher.Close()
	dispatcher.Close()
}
