package sandbox

import (
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
)

// NewFromInput resolves in and builds a Runtime backed by a LocalManager
func NewFromInput(in config.Input, options ...Option) (*Runtime, error) {
	return New(config.Resolve(in), nil, options...)
}
