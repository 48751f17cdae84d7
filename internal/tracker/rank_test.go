package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankString(t *testing.T) {
	tests := []struct {
		name                           string
		class, level, percentile, step interface{}
		place                          interface{}
		want                           string
	}{
		{
			name:  "all components",
			class: "Gold", level: json.Number("3"), percentile: json.Number("0.0"),
			place: json.Number("0"), step: json.Number("2"),
			want: "Gold-3-0.0-0-2",
		},
		{
			name: "all absent",
			want: "None-None-None-None-None",
		},
		{
			name:  "mythic with percentile",
			class: "Mythic", level: json.Number("1"), percentile: json.Number("97.1"),
			place: json.Number("1200"),
			want:  "Mythic-1-97.1-1200-None",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankString(tt.class, tt.level, tt.percentile, tt.place, tt.step)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankString_PreservesNumericText(t *testing.T) {
	// "0.0" and "0" are distinct components and must not collapse.
	withDecimal := RankString("Gold", json.Number("1"), json.Number("0.0"), nil, nil)
	withInteger := RankString("Gold", json.Number("1"), json.Number("0"), nil, nil)
	assert.Equal(t, "Gold-1-0.0-None-None", withDecimal)
	assert.Equal(t, "Gold-1-0-None-None", withInteger)
}
