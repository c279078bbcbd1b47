package health

import (
	"context"
	"fmt"

	"mercator-hq/feedback/pkg/providerfactory"
)

// Pinger is implemented by the account store and the Redis client wrapper.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger into a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// ProviderSummarizer reports provider health, satisfied by
// *providerfactory.Manager.
type ProviderSummarizer interface {
	GetHealthSummary() providerfactory.HealthSummary
}

// ProviderCheck fails when no registered provider is healthy. With no
// providers configured at all every analysis falls back, which is reported
// the same way.
func ProviderCheck(s ProviderSummarizer) CheckFunc {
	return func(context.Context) error {
		summary := s.GetHealthSummary()
		if summary.Total == 0 {
			return fmt.Errorf("no providers configured")
		}
		if summary.Healthy == 0 {
			return fmt.Errorf("no healthy providers (%d unhealthy)", summary.Unhealthy)
		}
		return nil
	}
}
