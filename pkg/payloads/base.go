package payloads

import (
	"fmt"
	"strings"
)

// RiskLevel groups payload templates by how aggressive the injected markup is.
type RiskLevel string

const (
	LevelBasic     RiskLevel = "basic"
	LevelStyled    RiskLevel = "styled"
	LevelDangerous RiskLevel = "dangerous"
	LevelXSS       RiskLevel = "xss"
)

// AllLevels lists every known level in catalog order.
var AllLevels = []RiskLevel{LevelBasic, LevelStyled, LevelDangerous, LevelXSS}

// DefaultLevels are used when the caller does not select any.
var DefaultLevels = []RiskLevel{LevelBasic, LevelStyled, LevelDangerous}

// IsValid reports whether the level is one of the known levels
func (l RiskLevel) IsValid() bool {
	for _, known := range AllLevels {
		if l == known {
			return true
		}
	}
	return false
}

func (l RiskLevel) String() string {
	return string(l)
}

// ParseLevels converts raw level names into risk levels keeping the given order and dropping duplicates.
// Unknown names are returned separately so the caller decides whether to skip or reject them.
func ParseLevels(names []string) (levels []RiskLevel, unknown []string) {
	seen := make(map[RiskLevel]bool)
	for _, name := range names {
		// accept comma separated values too, as viper hands env vars over as a single string
		for _, part := range strings.Split(name, ",") {
			level := RiskLevel(strings.ToLower(strings.TrimSpace(part)))
			if level == "" {
				continue
			}
			if !level.IsValid() {
				unknown = append(unknown, part)
				continue
			}
			if seen[level] {
				continue
			}
			seen[level] = true
			levels = append(levels, level)
		}
	}
	return levels, unknown
}

// ParseLevelsStrict behaves like ParseLevels but fails on the first unknown level name
func ParseLevelsStrict(names []string) ([]RiskLevel, error) {
	levels, unknown := ParseLevels(names)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown payload level %q, valid levels are %v", unknown[0], AllLevels)
	}
	return levels, nil
}
