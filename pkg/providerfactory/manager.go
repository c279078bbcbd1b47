package providerfactory

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"mercator-hq/feedback/pkg/providers"
)

// ErrProviderNotFound is returned when a provider name is not registered.
var ErrProviderNotFound = errors.New("provider not found")

// Manager holds the LLM backends available to the analyzer, keyed by the
// name they have in the providers config section. It is safe for
// concurrent use.
type Manager struct {
	mu     sync.RWMutex
	byName map[string]providers.Provider
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]providers.Provider)}
}

// AddProvider builds a provider from config and registers it.
func (m *Manager) AddProvider(config providers.ProviderConfig) error {
	provider, err := NewProvider(config)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", config.Name, err)
	}
	m.Register(config.Name, provider)
	return nil
}

// Register stores provider under name. A provider previously registered
// under the same name is closed.
func (m *Manager) Register(name string, provider providers.Provider) {
	m.mu.Lock()
	previous := m.byName[name]
	m.byName[name] = provider
	count := len(m.byName)
	m.mu.Unlock()

	if previous != nil {
		slog.Warn("replacing provider", "name", name)
		closeProvider(name, previous)
	}

	slog.Info("provider registered",
		"name", name,
		"type", provider.GetType(),
		"model", provider.GetModel(),
		"total_providers", count,
	)
}

// RemoveProvider unregisters and closes the named provider.
func (m *Manager) RemoveProvider(name string) error {
	m.mu.Lock()
	provider, ok := m.byName[name]
	delete(m.byName, name)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	closeProvider(name, provider)
	return nil
}

// GetProvider returns the provider registered under name.
func (m *Manager) GetProvider(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if provider, ok := m.byName[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
}

// GetProviderNames returns the registered names in sorted order.
func (m *Manager) GetProviderNames() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	return names
}

// ProviderCount returns the number of registered providers.
func (m *Manager) ProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}

// LoadFromConfig registers a provider for each config. All configs are
// tried; the failures are joined into the returned error.
func (m *Manager) LoadFromConfig(configs []providers.ProviderConfig) error {
	var errs []error
	for _, cfg := range configs {
		if err := m.AddProvider(cfg); err != nil {
			slog.Error("failed to load provider", "name", cfg.Name, "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to load %d of %d provider(s): %w", len(errs), len(configs), errors.Join(errs...))
	}
	slog.Info("providers loaded", "count", len(configs), "names", m.GetProviderNames())
	return nil
}

// Close closes and unregisters every provider.
func (m *Manager) Close() error {
	m.mu.Lock()
	registered := m.byName
	m.byName = make(map[string]providers.Provider)
	m.mu.Unlock()

	var errs []error
	for name, provider := range registered {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// HealthSummary counts healthy and unhealthy providers.
type HealthSummary struct {
	Total     int
	Healthy   int
	Unhealthy int
	Details   map[string]providers.ProviderHealth
}

// GetHealthSummary reports the health tracked by each provider.
func (m *Manager) GetHealthSummary() HealthSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := HealthSummary{
		Total:   len(m.byName),
		Details: make(map[string]providers.ProviderHealth, len(m.byName)),
	}
	for name, provider := range m.byName {
		h := provider.GetHealth()
		summary.Details[name] = h
		if h.IsHealthy {
			summary.Healthy++
		}
	}
	summary.Unhealthy = summary.Total - summary.Healthy
	return summary
}

func closeProvider(name string, provider providers.Provider) {
	if err := provider.Close(); err != nil {
		slog.Error("error closing provider", "name", name, "error", err)
	}
}
