// Package chat implements the site's AI assistant: a system prompt built
// from the content snapshot and a streaming completion provider.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/eringen/portaransas/content"
)

// Roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer streams a model reply for messages, calling emit for each
// content delta in order. Streaming stops at the first emit error.
type Completer interface {
	Stream(ctx context.Context, messages []Message, emit func(delta string) error) error
}

var (
	ErrEmptyMessage   = errors.New("chat: message is empty")
	ErrMessageTooLong = errors.New("chat: message is too long")
	ErrBadRole        = errors.New("chat: unsupported role")
)

// Limits applied by Assistant.
const (
	DefaultMaxHistory    = 12
	DefaultMaxMessageLen = 1000
)

// Assistant validates conversations and forwards them to a Completer with
// the site's system prompt prepended.
type Assistant struct {
	completer     Completer
	system        string
	MaxHistory    int
	MaxMessageLen int
}

// NewAssistant builds an assistant whose system prompt describes snap.
func NewAssistant(c Completer, snap *content.Snapshot) *Assistant {
	return &Assistant{
		completer:     c,
		system:        SystemPrompt(snap),
		MaxHistory:    DefaultMaxHistory,
		MaxMessageLen: DefaultMaxMessageLen,
	}
}

// System returns the system prompt sent with every conversation.
func (a *Assistant) System() string { return a.system }

// Prepare validates history and returns the messages sent to the provider:
// the system prompt followed by at most MaxHistory client turns.
func (a *Assistant) Prepare(history []Message) ([]Message, error) {
	if len(history) == 0 {
		return nil, ErrEmptyMessage
	}
	turns := make([]Message, 0, len(history))
	for _, m := range history {
		m.Content = strings.TrimSpace(m.Content)
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return nil, fmt.Errorf("%w: %q", ErrBadRole, m.Role)
		}
		if utf8.RuneCountInString(m.Content) > a.MaxMessageLen {
			return nil, ErrMessageTooLong
		}
		turns = append(turns, m)
	}
	last := turns[len(turns)-1]
	if last.Role != RoleUser || last.Content == "" {
		return nil, ErrEmptyMessage
	}
	if a.MaxHistory > 0 && len(turns) > a.MaxHistory {
		turns = turns[len(turns)-a.MaxHistory:]
	}
	return append([]Message{{Role: RoleSystem, Content: a.system}}, turns...), nil
}

// Reply validates history and streams the provider's answer through emit.
func (a *Assistant) Reply(ctx context.Context, history []Message, emit func(delta string) error) error {
	msgs, err := a.Prepare(history)
	if err != nil {
		return err
	}
	return a.completer.Stream(ctx, msgs, emit)
}

// SystemPrompt describes the brokerage and its listings for the model.
func SystemPrompt(snap *content.Snapshot) string {
	var b strings.Builder
	site := snap.Site
	fmt.Fprintf(&b, "You are the friendly assistant for %s, a real estate brokerage in %s, Texas.\n", site.Brokerage, site.Name)
	b.WriteString("Answer questions about the listings, the island and the local area. Keep answers short. ")
	b.WriteString("Only quote prices and details listed below; if you don't know, suggest contacting an agent. ")
	b.WriteString("Never promise availability or give legal or financial advice.\n")
	if site.Phone != "" || site.Email != "" {
		fmt.Fprintf(&b, "Contact: phone %s, email %s, or the form at /contact/.\n", site.Phone, site.Email)
	}

	b.WriteString("\nListings:\n")
	for _, p := range snap.Properties.All() {
		fmt.Fprintf(&b, "- %s (%s): %s, %d bd / %g ba, %d sq ft, %s. %s\n",
			p.Name, content.KindProperty.Path(p.EntityKey()), p.Pricing.Display(),
			p.Specs.Bedrooms, p.Specs.Bathrooms, p.Specs.SquareFeet, statusLabel(p.Pricing.Status), p.Description)
	}

	if acts := snap.Activities.All(); len(acts) > 0 {
		b.WriteString("\nThings to do:\n")
		for _, a := range acts {
			fmt.Fprintf(&b, "- %s (%s)\n", a.Title, content.KindActivity.Path(a.EntityKey()))
		}
	}
	if months := snap.Months.All(); len(months) > 0 {
		b.WriteString("\nMonthly guides:\n")
		for _, m := range months {
			fmt.Fprintf(&b, "- %s: highs around %d°F, water %d°F (%s)\n",
				m.Title, m.Weather.AvgHighF, m.Weather.WaterTempF, content.KindMonthlyGuide.Path(m.EntityKey()))
		}
	}
	return b.String()
}

func statusLabel(s string) string {
	switch s {
	case content.StatusPending:
		return "pending"
	case content.StatusSold:
		return "sold"
	default:
		return "for sale"
	}
}
