package vision

import (
	"fmt"

	"brfiq/internal/config"
	"brfiq/internal/domain"
	"brfiq/internal/port"
)

// ProviderFactory is a function that creates a VisionParser from the vision config.
type ProviderFactory func(cfg *config.VisionConfig) (port.VisionParser, error)

// registry of vision provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a vision provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a VisionParser for the configured provider. Returns an
// error wrapping domain.ErrMissingAPIKey when no key is configured or
// resolvable from the provider's environment variables.
func NewParser(cfg *config.VisionConfig) (port.VisionParser, error) {
	if cfg.ResolveAPIKey() == "" {
		return nil, fmt.Errorf("%w for provider %s", domain.ErrMissingAPIKey, cfg.Provider)
	}
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Providers returns the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
