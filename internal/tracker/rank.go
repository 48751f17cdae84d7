package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rankFieldAbsent is the literal placeholder for a missing rank component.
// The collection API has always received this form, so it is kept stable.
const rankFieldAbsent = "None"

// RankString serializes the components of a competitive rank into the
// recorded composite form, e.g. "Gold-3-0.0-0-2". Missing components are
// included as their absence marker so the field count and order never vary.
func RankString(class, level, percentile, place, step interface{}) string {
	parts := []interface{}{class, level, percentile, place, step}
	formatted := make([]string, len(parts))
	for i, part := range parts {
		formatted[i] = formatRankComponent(part)
	}
	return strings.Join(formatted, "-")
}

func formatRankComponent(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return rankFieldAbsent
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
