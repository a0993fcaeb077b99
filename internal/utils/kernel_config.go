package utils

import (
	"fmt"
	"os"
	"path/filepath"

	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// ServiceConfig describes one completion service of the kernel.
type ServiceConfig struct {
	ID     string `json:"id" yaml:"id"`
	Vendor string `json:"vendor" yaml:"vendor"`
	Model  string `json:"model" yaml:"model"`
	// BaseURL overrides the vendor default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// APIKeyEnv overrides the vendor default environment variable holding
	// the api key.
	APIKeyEnv string               `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	Settings  *pub_models.Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

type KernelConfig struct {
	DefaultService string          `json:"default_service" yaml:"default_service"`
	Services       []ServiceConfig `json:"services" yaml:"services"`
}

const kernelConfigName = "kernelConfig.json"

var DefaultKernelConfig = KernelConfig{
	DefaultService: pub_models.DefaultServiceID,
	Services: []ServiceConfig{
		{
			ID:     pub_models.DefaultServiceID,
			Vendor: "openai",
			Model:  "gpt-4.1-mini",
		},
	},
}

// Service returns the config of service id.
func (k KernelConfig) Service(id string) (ServiceConfig, bool) {
	for _, s := range k.Services {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceConfig{}, false
}

// Validate ensures every service has a unique, non-empty id and a vendor.
func (k KernelConfig) Validate() error {
	seen := make(map[string]struct{}, len(k.Services))
	for i, s := range k.Services {
		if s.ID == "" {
			return fmt.Errorf("service at index %v has no id", i)
		}
		if s.Vendor == "" {
			return fmt.Errorf("service '%v' has no vendor", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("service '%v' is configured more than once", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// LoadKernelConfig from configDirPath. A yaml config (kernelConfig.yaml or
// kernelConfig.yml) is preferred when present, otherwise kernelConfig.json
// is used and created with the defaults if missing.
func LoadKernelConfig(configDirPath string) (KernelConfig, error) {
	name := kernelConfigName
	for _, candidate := range []string{"kernelConfig.yaml", "kernelConfig.yml"} {
		if _, err := os.Stat(filepath.Join(configDirPath, candidate)); err == nil {
			name = candidate
			break
		}
	}
	dflt := DefaultKernelConfig
	conf, err := LoadConfigFromFile(configDirPath, name, nil, &dflt)
	if err != nil {
		return KernelConfig{}, fmt.Errorf("failed to load kernel config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return KernelConfig{}, fmt.Errorf("invalid kernel config '%v': %w", name, err)
	}
	return conf, nil
}
