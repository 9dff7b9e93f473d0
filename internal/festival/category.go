package festival

import "strings"

// Zone is the festival zone a program belongs to.
type Zone string

const (
	ZoneA    Zone = "A"
	ZoneB    Zone = "B"
	ZoneC    Zone = "C"
	ZoneNone Zone = ""
)

// StageType classifies how a program is performed.
type StageType string

const (
	StageTypeStage    StageType = "stage"
	StageTypeOffStage StageType = "offstage"
	StageTypeGeneral  StageType = "general"
)

// AgeGroup is the age bracket encoded in a program category.
type AgeGroup string

const (
	AgeJunior AgeGroup = "junior"
	AgeSenior AgeGroup = "senior"
	AgeNone   AgeGroup = ""
)

// Category is the structured form of the free-text category field. Legacy
// documents encode zone, stage type, and age group as substrings of a single
// string (e.g. "B zone stage senior"); ParseCategory is the migration mapping.
type Category struct {
	Zone      Zone      `json:"zone"`
	StageType StageType `json:"stageType"`
	AgeGroup  AgeGroup  `json:"ageGroup"`
}

// ParseCategory derives a structured Category from legacy free text. The
// substring rules match the original documents exactly: matching is
// case-insensitive, "general" wins over stage/off-stage, and off-stage is any
// of "no stage", "non stage", or "off stage".
func ParseCategory(raw string) Category {
	s := strings.ToLower(raw)

	var c Category
	switch {
	case strings.Contains(s, "a zone"):
		c.Zone = ZoneA
	case strings.Contains(s, "b zone"):
		c.Zone = ZoneB
	case strings.Contains(s, "c zone"):
		c.Zone = ZoneC
	}

	switch {
	case strings.Contains(s, "general"):
		c.StageType = StageTypeGeneral
	case strings.Contains(s, "no stage"), strings.Contains(s, "non stage"), strings.Contains(s, "off stage"):
		c.StageType = StageTypeOffStage
	default:
		c.StageType = StageTypeStage
	}

	switch {
	case strings.Contains(s, "junior"):
		c.AgeGroup = AgeJunior
	case strings.Contains(s, "senior"):
		c.AgeGroup = AgeSenior
	}

	return c
}
