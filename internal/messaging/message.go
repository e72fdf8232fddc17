// Package messaging simulates composing, sending and drafting bulk messages.
// Nothing is delivered; sends and drafts are recorded in memory and in a
// daily JSONL journal.
package messaging

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/solatis/bulkmsg/internal/types"
)

// Channel is the delivery medium.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelText  Channel = "text"
)

// MaxTextLength is the SMS body limit in characters.
const MaxTextLength = 160

// DefaultSender is used when a draft names no sender.
const DefaultSender = "Hauler Hero"

// Status is the lifecycle state of a message.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusDelivered Status = "Delivered"
	StatusDeleted   Status = "Deleted" // journal only
)

// Draft is the composer input.
type Draft struct {
	Channel        Channel  `json:"channel"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	Sender         string   `json:"sender"`
	RecipientIDs   []string `json:"recipientIds"`
	RecipientLabel string   `json:"recipientLabel,omitempty"`
}

// Message is a sent message or a saved draft.
type Message struct {
	ID             types.MessageID `json:"id"`
	Channel        Channel         `json:"channel"`
	Subject        string          `json:"subject,omitempty"`
	Body           string          `json:"body"`
	Sender         string          `json:"sender"`
	RecipientIDs   []string        `json:"recipientIds"`
	RecipientCount int             `json:"recipientCount"`
	RecipientLabel string          `json:"recipientLabel,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	SentAt         *time.Time      `json:"sentAt,omitempty"`
}

func (d *Draft) normalize() {
	if d.Channel == "" {
		d.Channel = ChannelEmail
	}
	d.Sender = strings.TrimSpace(d.Sender)
	if d.Sender == "" {
		d.Sender = DefaultSender
	}
	d.Subject = strings.TrimSpace(d.Subject)
}

// validate checks the draft. Sends additionally need a body, a subject for
// email and a body within the SMS limit for text.
func (d Draft) validate(send bool) error {
	if d.Channel != ChannelEmail && d.Channel != ChannelText {
		return fmt.Errorf("%w: unknown channel %q", types.ErrInvalidMessage, d.Channel)
	}
	if len(d.RecipientIDs) == 0 {
		return types.ErrNoRecipients
	}
	if !send {
		return nil
	}
	if strings.TrimSpace(d.Body) == "" {
		return fmt.Errorf("%w: empty body", types.ErrInvalidMessage)
	}
	if d.Channel == ChannelEmail && d.Subject == "" {
		return fmt.Errorf("%w: email needs a subject", types.ErrInvalidMessage)
	}
	if d.Channel == ChannelText && utf8.RuneCountInString(d.Body) > MaxTextLength {
		return fmt.Errorf("%w: text exceeds %d characters", types.ErrInvalidMessage, MaxTextLength)
	}
	return nil
}
