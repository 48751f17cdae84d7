package parser

import (
	"encoding/json"
	"strconv"
	"time"
)

// The Arena client reports event times either as .NET ticks (100ns intervals
// since 0001-01-01, proleptic Gregorian) or as ISO-8601 strings, at one of
// three nesting depths depending on the message family.

const (
	ticksPerSecond = 10_000_000
	// Seconds between 0001-01-01T00:00:00Z and the Unix epoch.
	yearOneToUnixSeconds = 62135596800
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ExtractUTCTime opportunistically pulls an event time out of a message.
// Absence and malformed values are treated identically: (zero, false). This
// value is best-effort metadata, never control flow.
func ExtractUTCTime(msg map[string]interface{}) (time.Time, bool) {
	var raw interface{}
	if v, ok := ValueAt(msg, "timestamp"); ok {
		raw = v
	} else if v, ok := ValueAt(msg, "payloadObject", "timestamp"); ok {
		raw = v
	} else if v, ok := ValueAt(msg, "params", "payloadObject", "timestamp"); ok {
		raw = v
	} else {
		return time.Time{}, false
	}

	switch v := raw.(type) {
	case json.Number:
		if ticks, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return fromTicks(ticks), true
		}
		return time.Time{}, false
	case float64:
		return fromTicks(int64(v)), true
	case string:
		if ticks, err := strconv.ParseInt(v, 10, 64); err == nil {
			return fromTicks(ticks), true
		}
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func fromTicks(ticks int64) time.Time {
	secs := ticks / ticksPerSecond
	nanos := (ticks % ticksPerSecond) * 100
	return time.Unix(secs-yearOneToUnixSeconds, nanos).UTC()
}
