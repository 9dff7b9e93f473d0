package festival

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"B zone stage senior", Category{ZoneB, StageTypeStage, AgeSenior}},
		{"A zone stage junior", Category{ZoneA, StageTypeStage, AgeJunior}},
		{"c zone no stage senior", Category{ZoneC, StageTypeOffStage, AgeSenior}},
		{"C Zone Non Stage Junior", Category{ZoneC, StageTypeOffStage, AgeJunior}},
		{"off stage senior", Category{ZoneNone, StageTypeOffStage, AgeSenior}},
		{"general", Category{ZoneNone, StageTypeGeneral, AgeNone}},
		// "general" wins even when a stage keyword is also present.
		{"a zone general no stage", Category{ZoneA, StageTypeGeneral, AgeNone}},
		{"", Category{ZoneNone, StageTypeStage, AgeNone}},
		{"something unrelated", Category{ZoneNone, StageTypeStage, AgeNone}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.raw))
		})
	}
}
