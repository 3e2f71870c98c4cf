package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// ParseInterval converts a refresh interval in seconds to a duration.
// Zero means "no refresh" for the snapshot commands; negative values are
// a config error. requirePositive is set by the grapher, which has no
// single-shot mode.
func ParseInterval(seconds float64, requirePositive bool) (time.Duration, error) {
	if seconds < 0 || (requirePositive && seconds == 0) {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval must be positive, got %g", seconds),
			"Pass a number of seconds greater than zero, like -i 0.5 or -i 2.")
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, errors.New(errors.ErrConfig,
			"Refresh interval must be a real number",
			"Pass a number of seconds greater than zero, like -i 0.5 or -i 2.")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
