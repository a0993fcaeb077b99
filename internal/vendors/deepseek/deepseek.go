package deepseek

import (
	"fmt"

	"github.com/baalimago/kernagent/internal/text/generic"
)

const (
	ChatURL   = "https://api.deepseek.com/chat/completions"
	APIKeyEnv = "DEEPSEEK_API_KEY"
)

var Default = Deepseek{
	Model:       "deepseek-chat",
	Temperature: 1.0,
	TopP:        1.0,
}

type Deepseek struct {
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

func (d *Deepseek) ServiceID() string {
	return d.ID
}

func (d *Deepseek) Setup() error {
	keyEnv := d.APIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv
	}
	d.StreamCompleter.ID = d.ID
	d.StreamCompleter.URL = d.URL
	err := d.StreamCompleter.Setup(keyEnv, ChatURL, "DEBUG_DEEPSEEK")
	if err != nil {
		return fmt.Errorf("failed to setup stream completer: %w", err)
	}
	d.StreamCompleter.Model = d.Model
	d.StreamCompleter.FrequencyPenalty = &d.FrequencyPenalty
	d.StreamCompleter.MaxTokens = d.MaxTokens
	d.StreamCompleter.PresencePenalty = &d.PresencePenalty
	d.StreamCompleter.Temperature = &d.Temperature
	d.StreamCompleter.TopP = &d.TopP
	return nil
}
