package ai

import "fmt"

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates raw completion text for a list of role-tagged messages.
// Implementations may fail on transport errors; callers catch and degrade.
type Provider interface {
	Generate(messages []Message) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(messages []Message) (string, error)

func (f ProviderFunc) Generate(messages []Message) (string, error) {
	return f(messages)
}

// FromEngine builds a Provider from an engine selector, e.g. "pollinations"
// or "g4f:gpt-oss-120b". Transports retry transient failures.
func FromEngine(engine string) (Provider, error) {
	switch {
	case engine == "pollinations", engine == "":
		return NewRetrier(NewPollinationsProvider(), 3), nil
	case engine == "g4f" || len(engine) > 4 && engine[:4] == "g4f:":
		return NewRetrier(NewG4FProvider(engine), 3), nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", engine)
	}
}
