package resilience

import "time"

// RetryPolicy bounds the retry loop for a single operation.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Factor    float64
}

// BreakerPolicy configures the per-operation circuit breaker.
type BreakerPolicy struct {
	Enabled        bool
	MinSamples     uint32
	TripRatio      float64
	CooldownPeriod time.Duration
	ProbeRequests  uint32
}

type Config struct {
	Retry   RetryPolicy
	Breaker BreakerPolicy
}

func DefaultConfig() Config {
	return Config{
		Retry: RetryPolicy{
			Attempts:  3,
			BaseDelay: 200 * time.Millisecond,
			MaxDelay:  2 * time.Second,
			Factor:    2.0,
		},
		Breaker: BreakerPolicy{
			Enabled:        true,
			MinSamples:     5,
			TripRatio:      0.5,
			CooldownPeriod: 30 * time.Second,
			ProbeRequests:  2,
		},
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.Retry.Attempts <= 0 {
		out.Retry.Attempts = def.Retry.Attempts
	}
	if out.Retry.BaseDelay <= 0 {
		out.Retry.BaseDelay = def.Retry.BaseDelay
	}
	if out.Retry.MaxDelay <= 0 {
		out.Retry.MaxDelay = def.Retry.MaxDelay
	}
	if out.Retry.MaxDelay < out.Retry.BaseDelay {
		out.Retry.MaxDelay = out.Retry.BaseDelay
	}
	if out.Retry.Factor < 1.0 {
		out.Retry.Factor = def.Retry.Factor
	}

	if out.Breaker.MinSamples == 0 {
		out.Breaker.MinSamples = def.Breaker.MinSamples
	}
	if out.Breaker.TripRatio <= 0 || out.Breaker.TripRatio > 1 {
		out.Breaker.TripRatio = def.Breaker.TripRatio
	}
	if out.Breaker.CooldownPeriod <= 0 {
		out.Breaker.CooldownPeriod = def.Breaker.CooldownPeriod
	}
	if out.Breaker.ProbeRequests == 0 {
		out.Breaker.ProbeRequests = def.Breaker.ProbeRequests
	}

	return out
}
