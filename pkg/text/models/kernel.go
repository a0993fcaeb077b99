package models

// DefaultServiceID is used when an agent has no explicit service configured.
// Registries treat it as "any service with the requested capability".
const DefaultServiceID = "default"

// Capability is a named contract a completion service fulfills.
type Capability string

const (
	CapabilityChatCompletion Capability = "chat-completion"
	CapabilityTextCompletion Capability = "text-completion"
	CapabilityEmbedding      Capability = "embedding"
)

// Service is anything which may be registered in a registry. What a service
// can do is announced through its capabilities.
type Service interface {
	ServiceID() string
	Capabilities() []Capability
}

// Settings are the execution settings paired with a resolved service. Nil
// pointer fields mean "use the service default".
type Settings struct {
	ServiceID        string         `json:"service_id,omitempty" yaml:"service_id,omitempty"`
	ModelID          string         `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	Temperature      *float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens        *int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty"`
	Stop             []string       `json:"stop,omitempty" yaml:"stop,omitempty"`
	Extra            map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Clone returns a deep enough copy of s for a caller to modify freely.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.Stop != nil {
		cpy.Stop = append([]string(nil), s.Stop...)
	}
	if s.Extra != nil {
		cpy.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			cpy.Extra[k] = v
		}
	}
	return &cpy
}

// Arguments are caller supplied parameters forwarded to service selection.
// ExecutionSettings is keyed by service id.
type Arguments struct {
	Values            map[string]any       `json:"values,omitempty"`
	ExecutionSettings map[string]*Settings `json:"execution_settings,omitempty"`
}

// NewArguments with the given settings registered under their ServiceID.
// Settings with an empty ServiceID are registered under DefaultServiceID.
func NewArguments(settings ...*Settings) Arguments {
	args := Arguments{
		Values: make(map[string]any),
	}
	for _, s := range settings {
		if s == nil {
			continue
		}
		if args.ExecutionSettings == nil {
			args.ExecutionSettings = make(map[string]*Settings)
		}
		id := s.ServiceID
		if id == "" {
			id = DefaultServiceID
		}
		args.ExecutionSettings[id] = s
	}
	return args
}
