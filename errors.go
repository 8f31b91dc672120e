package plyshard

import (
	"errors"
	"fmt"

	"github.com/hupe1980/plyshard/metadata"
)

var (
	// ErrMissingHeaderMetadata is returned when a group run starts with no
	// in-memory header and no header_info.json sidecar from a prior split.
	ErrMissingHeaderMetadata = errors.New("plyshard: missing header metadata, run a split first")

	// ErrNoChunks is returned when the chunk directory holds no chunk files.
	ErrNoChunks = errors.New("plyshard: no chunk files to group")
)

// ConfigError reports an invalid parameter, caught before any I/O.
type ConfigError struct {
	Param  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plyshard: invalid %s %d: %s", e.Param, e.Value, e.Reason)
}

// translateError unifies cross-package conditions into the root taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, metadata.ErrNoHeaderInfo) {
		return fmt.Errorf("%w: %w", ErrMissingHeaderMetadata, err)
	}

	return err
}
