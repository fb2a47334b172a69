package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize  = 256
	defaultMaxRetries = 3
	retryBackoff      = 2 * time.Second
	sendTimeout       = 30 * time.Second
)

// Dispatcher queues emails and delivers them from a background worker, so
// request handlers never block on the mail provider. A full queue drops the
// message with a log line rather than stalling the caller.
type Dispatcher struct {
	provider   Provider
	logger     *logrus.Entry
	queue      chan *Message
	maxRetries int
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewDispatcher creates a dispatcher and starts its delivery worker.
func NewDispatcher(provider Provider, logger *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		provider:   provider,
		logger:     logger.WithField("component", "mailer.dispatcher"),
		queue:      make(chan *Message, defaultQueueSize),
		maxRetries: defaultMaxRetries,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue schedules a message for delivery. It never blocks; when the queue
// is full the message is dropped and logged.
func (d *Dispatcher) Enqueue(message *Message) {
	select {
	case d.queue <- message:
	default:
		d.logger.WithFields(logrus.Fields{
			"to":      message.To,
			"subject": message.Subject,
		}).Warn("Mail queue full, dropping message")
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for message := range d.queue {
		d.deliver(message)
	}
}

func (d *Dispatcher) deliver(message *Message) {
	var err error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err = d.provider.Send(ctx, message)
		cancel()
		if err == nil {
			d.logger.WithFields(logrus.Fields{
				"to":       message.To,
				"subject":  message.Subject,
				"provider": d.provider.GetName(),
			}).Info("Email sent")
			return
		}
		d.logger.WithError(err).WithFields(logrus.Fields{
			"to":      message.To,
			"attempt": attempt,
		}).Warn("Email delivery failed")
		if attempt < d.maxRetries {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}
	}
	d.logger.WithError(err).WithField("to", message.To).Error("Giving up on email delivery")
}
