package email

import (
	"context"
	"regexp"
)

// Sender delivers a single transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	To       string // recipient address
	Subject  string
	BodyHTML string
	Tag      string // optional Postmark tag for delivery analytics
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the fields required for any sender implementation.
func (m Message) Validate() error {
	if !emailRegex.MatchString(m.To) {
		return ErrInvalidRecipient
	}
	return nil
}
