package email

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ConsoleSender writes messages to the log instead of delivering them, and
// records them so tests can assert on what would have been sent.
type ConsoleSender struct {
	mu            sync.Mutex
	sent          []Message
	disableOutput bool
	out           func(string)
}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{out: func(s string) { fmt.Println(s) }}
}

// NewConsoleSenderSilent records messages without printing them.
func NewConsoleSenderSilent() *ConsoleSender {
	return &ConsoleSender{disableOutput: true}
}

func (s *ConsoleSender) Send(ctx context.Context, msg *Message) error {
	if !msg.HasRecipient() || !msg.HasContent() {
		return ErrEmptyMessage
	}

	if !s.disableOutput {
		body := new(strings.Builder)
		fmt.Fprintf(body, "To: %s <%s>\r\n", msg.ToName, msg.ToAddress)
		fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		fmt.Fprintf(body, "Subject: %s\r\n", msg.Subject)
		fmt.Fprintf(body, "\r\n%s\r\n", msg.TextBody)
		s.out(body.String())
	}

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	s.mu.Unlock()
	return nil
}

// SentMessages returns a copy of everything sent so far.
func (s *ConsoleSender) SentMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
