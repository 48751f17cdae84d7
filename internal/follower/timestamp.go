package follower

import (
	"fmt"
	"strings"
	"time"

	"github.com/LeoDroves/mtga-log-client/internal/constants"
)

// ParseLogTime converts a timestamp in any of the layouts the Arena client
// emits into a time.Time, trying each accepted layout in order.
func ParseLogTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range constants.TimeFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", raw)
}
