// Package vendors creates the chat completion backends of the kernel.
package vendors

import (
	"fmt"
	"strings"

	"github.com/baalimago/kernagent/internal/models"
	"github.com/baalimago/kernagent/internal/text/generic"
	"github.com/baalimago/kernagent/internal/utils"
	"github.com/baalimago/kernagent/internal/vendors/anthropic"
	"github.com/baalimago/kernagent/internal/vendors/deepseek"
	"github.com/baalimago/kernagent/internal/vendors/gemini"
	"github.com/baalimago/kernagent/internal/vendors/mistral"
	"github.com/baalimago/kernagent/internal/vendors/ollama"
	"github.com/baalimago/kernagent/internal/vendors/openai"
)

// Vendors known by NewFromConfig
const (
	VendorOpenAI           = "openai"
	VendorAnthropic        = "anthropic"
	VendorGemini           = "gemini"
	VendorOllama           = "ollama"
	VendorMistral          = "mistral"
	VendorDeepseek         = "deepseek"
	VendorOpenAICompatible = "openai-compatible"
	VendorMock             = "mock"
)

// NewFromConfig returns a ChatCompleter for the vendor of conf. Setup is
// left to the caller.
func NewFromConfig(conf utils.ServiceConfig) (models.ChatCompleter, error) {
	switch strings.ToLower(conf.Vendor) {
	case VendorOpenAI:
		v := openai.GptDefault
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.BaseURL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorAnthropic:
		v := anthropic.ClaudeDefault
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.BaseURL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorGemini:
		v := gemini.Default
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.BaseURL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorOllama:
		v := ollama.Default
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.URL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorMistral:
		v := mistral.Default
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.URL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorDeepseek:
		v := deepseek.Default
		v.ID = conf.ID
		v.Model = orDefault(conf.Model, v.Model)
		v.URL = conf.BaseURL
		v.APIKeyEnv = conf.APIKeyEnv
		return &v, nil
	case VendorOpenAICompatible:
		if conf.BaseURL == "" {
			return nil, fmt.Errorf("vendor '%v' requires a base_url", conf.Vendor)
		}
		c := &compatible{conf: conf}
		c.ID = conf.ID
		return c, nil
	case VendorMock:
		return &Mock{ID: conf.ID}, nil
	}
	return nil, fmt.Errorf("unknown vendor: '%v'", conf.Vendor)
}

// compatible is any openai compatible endpoint configured only through the
// service config
type compatible struct {
	generic.StreamCompleter
	conf utils.ServiceConfig
}

func (c *compatible) Setup() error {
	c.StreamCompleter.Model = c.conf.Model
	if err := c.StreamCompleter.Setup(c.conf.APIKeyEnv, c.conf.BaseURL, "DEBUG_GENERIC"); err != nil {
		return fmt.Errorf("failed to setup stream completer: %w", err)
	}
	c.SetRateLimiter(generic.NewRateLimiter(generic.OpenAIRemainingTokensHeader, generic.OpenAIResetTokensHeader))
	return nil
}

func orDefault(s, dflt string) string {
	if s == "" {
		return dflt
	}
	return s
}
