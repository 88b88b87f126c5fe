// Package email delivers front-desk notifications such as payment receipts.
package email

import (
	"context"
	"time"
)

// Message is one outgoing notification.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string // plain-text alternative; optional
}

// Receipt is the provider's acknowledgement of a send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// NewSender returns a Resend-backed sender when apiKey is set, otherwise a NoopSender.
// PRE: from is a valid sender address when apiKey is non-empty
func NewSender(apiKey, from string) Sender {
	if apiKey == "" {
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from)
}
