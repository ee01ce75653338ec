package ai

import (
	"fmt"
	"time"
)

const (
	ProviderHTTP      = "http"
	ProviderLangChain = "langchain"
)

// NewCompleter picks the completion client named by provider.
func NewCompleter(provider string, timeout time.Duration) (Completer, error) {
	switch provider {
	case "", ProviderHTTP:
		return NewOpenAICompatibleClient(timeout), nil
	case ProviderLangChain:
		return NewLangChainClient(timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
