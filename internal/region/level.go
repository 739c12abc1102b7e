package region

import (
	"encoding/json"
	"fmt"
)

// Level is the administrative rank of a region. It is a tie-break weight
// for scoring, not a structural constraint: a city may be a root region
// (municipalities) and a district may hang directly off a province.
type Level uint8

const (
	LevelUnknown Level = iota
	LevelCountry
	LevelProvince
	LevelCity
	LevelDistrict
	LevelStreet
	LevelVillage
)

// levelNames are the dataset's native level labels.
var levelNames = map[Level]string{
	LevelCountry:  "国家级",
	LevelProvince: "省级",
	LevelCity:     "市级",
	LevelDistrict: "区县级",
	LevelStreet:   "街道级",
	LevelVillage:  "村级",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Rank returns the numeric depth of the level, 1 being the highest
// (country). Unknown levels sort last.
func (l Level) Rank() int {
	if l == LevelUnknown || l > LevelVillage {
		return 99
	}
	return int(l)
}

// MarshalJSON emits the native level label.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either a level label or its numeric value, since
// datasets in the wild carry both.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ParseLevel(s)
		return nil
	}
	var n uint8
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("level must be a label or a number: %w", err)
	}
	if Level(n) > LevelVillage {
		*l = LevelUnknown
		return nil
	}
	*l = Level(n)
	return nil
}

// ParseLevel maps a level label (native or english) to a Level.
func ParseLevel(s string) Level {
	switch s {
	case "国家级", "country":
		return LevelCountry
	case "省级", "province":
		return LevelProvince
	case "市级", "city":
		return LevelCity
	case "区县级", "district", "county":
		return LevelDistrict
	case "街道级", "street", "subdistrict":
		return LevelStreet
	case "村级", "village":
		return LevelVillage
	default:
		return LevelUnknown
	}
}
