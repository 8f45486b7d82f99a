package host

import (
	"errors"
	"fmt"

	"github.com/justyntemme/plughost/pkg/framework/state"
)

var (
	// ErrOutOfRange means the engine asked for a block size the plugin was not activated for.
	ErrOutOfRange = errors.New("block size outside negotiated range")
	// ErrChannelMismatch means engine and staging buffers do not line up.
	ErrChannelMismatch = errors.New("channel mismatch")
)

// ReconfigureError reports a block size change that needs a reactivation.
type ReconfigureError struct {
	Frames uint32
	Range  state.BlockSizeRange
}

func (e *ReconfigureError) Error() string {
	return fmt.Sprintf("reconfigure to %d frames: outside negotiated range %s", e.Frames, e.Range)
}

func (e *ReconfigureError) Is(target error) bool {
	return target == ErrOutOfRange
}
