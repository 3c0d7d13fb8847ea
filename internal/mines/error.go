package mines

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when board parameters cannot produce a
// playable grid. It is the only error the engine reports.
var ErrInvalidConfiguration = errors.New("invalid game configuration")

// ConfigError describes which parameters were rejected. It matches
// [ErrInvalidConfiguration] under [errors.Is].
type ConfigError struct {
	Size, MineCount int
	reason          string
}

// [ConfigError] implements [error]
func (e ConfigError) Error() string {
	return fmt.Sprintf(
		"%s: %s (size = %d, mine count = %d)",
		ErrInvalidConfiguration, e.reason, e.Size, e.MineCount,
	)
}

func (e ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
