// Package refine decides whether text produced by a language model may
// replace a raw transcription.
package refine

import "context"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
}

// Model is the text-generation collaborator. Format turns a chat exchange into
// the prompt Generate expects.
type Model interface {
	Format(messages []Message) (string, error)
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Capability tags whether a refinement model is available.
type Capability struct {
	model  Model
	reason string
}

func Enabled(model Model) Capability {
	if model == nil {
		return Disabled("no refinement model")
	}
	return Capability{model: model}
}

func Disabled(reason string) Capability {
	return Capability{reason: reason}
}

func (c Capability) Enabled() bool {
	return c.model != nil
}

// Reason explains why the capability is disabled.
func (c Capability) Reason() string {
	return c.reason
}
