package generic

import (
	"net/http"

	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// StreamCompleter is a struct which follows the model for the OpenAI
// compatible chat completion endpoints, such as Mistral, Deepseek or Ollama.
type StreamCompleter struct {
	ID               string
	Model            string
	URL              string
	FrequencyPenalty *float64
	MaxTokens        *int
	PresencePenalty  *float64
	Temperature      *float64
	TopP             *float64
	// Clean is applied to a copy of the messages before they're sent, for
	// endpoints which have opinions about the shape of the conversation.
	Clean   func([]pub_models.Message) []pub_models.Message
	client  *http.Client
	apiKey  string
	limiter *RateLimiter
	debug   bool
}

type chatCompletionChunk struct {
	Id                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int      `json:"created"`
	Model             string   `json:"model"`
	SystemFingerprint string   `json:"system_fingerprint"`
	Choices           []Choice `json:"choices"`
}

type Choice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type req struct {
	Model            string               `json:"model,omitempty"`
	ResponseFormat   responseFormat       `json:"response_format,omitempty"`
	Messages         []pub_models.Message `json:"messages,omitempty"`
	Stream           bool                 `json:"stream,omitempty"`
	FrequencyPenalty *float64             `json:"frequency_penalty,omitempty"`
	MaxTokens        *int                 `json:"max_tokens,omitempty"`
	PresencePenalty  *float64             `json:"presence_penalty,omitempty"`
	Temperature      *float64             `json:"temperature,omitempty"`
	TopP             *float64             `json:"top_p,omitempty"`
	Stop             []string             `json:"stop,omitempty"`
}
