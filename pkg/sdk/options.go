package sdk

import "time"

// DefaultActor is recorded in the audit trail when a call names no actor.
const DefaultActor = "sdk"

type config struct {
	callTimeout time.Duration
	attempts    int
	backoff     time.Duration
	actor       string
}

// Option configures the SDK client.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		callTimeout: 30 * time.Second,
		attempts:    3,
		backoff:     500 * time.Millisecond,
		actor:       DefaultActor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTimeout bounds every tool call.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.callTimeout = d }
}

// WithRetry sets how often a failed transport call is retried. Tool errors
// are answers, not failures, and are never retried.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(c *config) {
		c.attempts = maxAttempts
		c.backoff = initialDelay
	}
}

// WithActor sets the actor recorded for routing and lifecycle calls that do
// not name one.
func WithActor(actor string) Option {
	return func(c *config) {
		if actor != "" {
			c.actor = actor
		}
	}
}
