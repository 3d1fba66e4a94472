package observe

import "github.com/vango-dev/reactive/pkg/reactive"

// config carries construction settings shared by all containers.
type config struct {
	engine *reactive.Engine
}

// Option configures a container at construction.
type Option func(*config)

// WithEngine binds the container to an engine other than the package
// default. Containers from different engines never interact.
func WithEngine(e *reactive.Engine) Option {
	return func(c *config) {
		c.engine = e
	}
}

func buildConfig(opts []Option) config {
	c := config{engine: reactive.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
