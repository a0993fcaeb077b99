package ollama

import (
	"fmt"

	"github.com/baalimago/kernagent/internal/text/generic"
)

const ChatURL = "http://localhost:11434/v1/chat/completions"

var Default = Ollama{
	Model:       "llama3",
	Temperature: 1.0,
	TopP:        1.0,
}

// Ollama talks to a local ollama instance over its openai compatible
// endpoint. No api key is needed unless APIKeyEnv is set.
type Ollama struct {
	generic.StreamCompleter
	ID               string  `json:"id"`
	Model            string  `json:"model"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	MaxTokens        *int    `json:"max_tokens"` // Use a pointer to allow null value
	PresencePenalty  float64 `json:"presence_penalty"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	URL              string  `json:"url"`
	APIKeyEnv        string  `json:"api_key_env"`
}

func (o *Ollama) ServiceID() string {
	return o.ID
}

func (o *Ollama) Setup() error {
	o.StreamCompleter.ID = o.ID
	o.StreamCompleter.URL = o.URL
	err := o.StreamCompleter.Setup(o.APIKeyEnv, ChatURL, "DEBUG_OLLAMA")
	if err != nil {
		return fmt.Errorf("failed to setup stream completer: %w", err)
	}
	o.StreamCompleter.Model = o.Model
	o.StreamCompleter.FrequencyPenalty = &o.FrequencyPenalty
	o.StreamCompleter.MaxTokens = o.MaxTokens
	o.StreamCompleter.PresencePenalty = &o.PresencePenalty
	o.StreamCompleter.Temperature = &o.Temperature
	o.StreamCompleter.TopP = &o.TopP
	return nil
}
