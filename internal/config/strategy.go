package config

import (
	"time"

	"github.com/lineterm/lineterm"
)

// BuildStrategy constructs the lineterm.Strategy named by cfg.Strategy.
// An unrecognized name falls back to Immediate.
func BuildStrategy(cfg Config) lineterm.Strategy {
	switch cfg.Strategy {
	case "fixed":
		return lineterm.NewFixedTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond)
	case "stateful":
		return lineterm.NewStatefulTimeout(
			time.Duration(cfg.StableMS)*time.Millisecond,
			time.Duration(cfg.VolatileMS)*time.Millisecond,
		)
	default:
		return lineterm.NewImmediate()
	}
}
