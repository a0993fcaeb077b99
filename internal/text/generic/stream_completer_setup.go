package generic

import (
	"fmt"
	"net/http"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// Setup the completer. An empty apiKeyEnv means that the endpoint requires
// no authentication.
func (s *StreamCompleter) Setup(apiKeyEnv, url, debugEnv string) error {
	if apiKeyEnv != "" {
		apiKey := os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return fmt.Errorf("environment variable '%v' not set", apiKeyEnv)
		}
		s.apiKey = apiKey
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.URL == "" {
		s.URL = url
	}
	if s.URL == "" {
		return fmt.Errorf("no url configured for service '%v'", s.ID)
	}

	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv(debugEnv)) {
		s.debug = true
	}

	return nil
}

func (s *StreamCompleter) SetRateLimiter(rl *RateLimiter) {
	s.limiter = rl
}

func (s *StreamCompleter) SetHTTPClient(c *http.Client) {
	s.client = c
}

func (s *StreamCompleter) ServiceID() string {
	return s.ID
}

func (s *StreamCompleter) Capabilities() []pub_models.Capability {
	return []pub_models.Capability{pub_models.CapabilityChatCompletion}
}
