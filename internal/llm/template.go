// Package llm provides the text-generation collaborators used for transcript
// cleanup.
package llm

import (
	"errors"
	"strings"

	"github.com/fmueller/voxserve/internal/refine"
)

var errNoMessages = errors.New("no messages to format")

// FormatChatML renders messages with the ChatML template used by Qwen-style
// instruct models and opens the assistant turn.
func FormatChatML(messages []refine.Message) (string, error) {
	if len(messages) == 0 {
		return "", errNoMessages
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString("<|im_start|>")
		b.WriteString(string(msg.Role))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("<|im_end|>\n")
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String(), nil
}

// FormatPlain joins message contents with blank lines, for hosted models that
// apply their own chat template.
func FormatPlain(messages []refine.Message) (string, error) {
	if len(messages) == 0 {
		return "", errNoMessages
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, strings.TrimSpace(msg.Content))
	}
	return strings.Join(parts, "\n\n"), nil
}
