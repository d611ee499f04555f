// Package prompt assembles the input text sent with a response request from
// an optional prefix, optional health context, recent conversation turns and
// the user's question.
package prompt

import (
	"strings"

	"github.com/papercomputeco/wellchat/pkg/llm"
)

// DefaultMaxHistory is the number of past messages kept when a Builder has
// no explicit limit.
const DefaultMaxHistory = 10

// Builder renders prompts. The zero value is usable.
type Builder struct {
	// Prefix is placed verbatim before everything else, e.g. a persona line.
	Prefix string

	// Context is caller supplied background such as a summary of the user's
	// health data. It is rendered under a "Context:" heading.
	Context string

	// MaxHistory caps the number of past messages rendered. Zero means
	// DefaultMaxHistory; a negative value drops history entirely.
	MaxHistory int
}

// Build returns the prompt for question given the prior conversation. The
// output always ends with "User: <question>\nAssistant:" so the model
// continues as the assistant.
func (b Builder) Build(history []llm.Message, question string) string {
	var sb strings.Builder

	if prefix := strings.TrimSpace(b.Prefix); prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString("\n\n")
	}

	if ctx := strings.TrimSpace(b.Context); ctx != "" {
		sb.WriteString("Context:\n")
		sb.WriteString(ctx)
		sb.WriteString("\n\n")
	}

	for _, msg := range b.recent(history) {
		label := speaker(msg.Role)
		if label == "" {
			continue
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n")
	}

	sb.WriteString("User: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\nAssistant:")

	return sb.String()
}

func (b Builder) recent(history []llm.Message) []llm.Message {
	limit := b.MaxHistory
	switch {
	case limit < 0:
		return nil
	case limit == 0:
		limit = DefaultMaxHistory
	}

	if len(history) > limit {
		return history[len(history)-limit:]
	}
	return history
}

// speaker maps a role to its transcript label. System messages are carried
// as instructions, not as transcript lines.
func speaker(role string) string {
	switch role {
	case llm.RoleUser:
		return "User"
	case llm.RoleAssistant:
		return "Assistant"
	default:
		return ""
	}
}
