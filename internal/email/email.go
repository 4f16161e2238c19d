// Package email delivers rendered study-plan reports. Two senders are
// provided: sendgrid for real delivery and a console sender for local runs
// and tests.
package email

import (
	"context"
	"errors"
)

// Message is one outgoing report email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// HasRecipient reports whether the message can be addressed.
func (m *Message) HasRecipient() bool {
	return m.ToAddress != ""
}

// HasContent reports whether the message has anything to send.
func (m *Message) HasContent() bool {
	return m.TextBody != "" || m.HTMLBody != ""
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

var ErrEmptyMessage = errors.New("email message has no recipient or content")
