// Package policy holds the static age-based rule tables consulted by the
// access-decision engine. Tables are built once at startup and never mutated
// afterwards, so they are safe to share across concurrent sessions.
package policy

import (
	"fmt"
	"strings"
)

// AgeGroup orders family members from youngest to oldest. The numeric order
// is load-bearing: keyword sets accumulate from older groups down to younger
// ones.
type AgeGroup int

const (
	Toddler AgeGroup = iota
	Preschool
	Elementary
	MiddleSchool
	HighSchool
	Adult
)

var ageGroupNames = map[AgeGroup]string{
	Toddler:      "toddler",
	Preschool:    "preschool",
	Elementary:   "elementary",
	MiddleSchool: "middle_school",
	HighSchool:   "high_school",
	Adult:        "adult",
}

func (g AgeGroup) String() string {
	if name, ok := ageGroupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("age_group(%d)", int(g))
}

// ParseAgeGroup maps a stored label back to an AgeGroup.
func ParseAgeGroup(s string) (AgeGroup, error) {
	for g, name := range ageGroupNames {
		if strings.EqualFold(s, name) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown age group %q", s)
}

// Role distinguishes who a member is in the household, independent of age
// group. Only Parent carries elevated defaults.
type Role string

const (
	RoleParent Role = "parent"
	RoleTeen   Role = "teen"
	RoleChild  Role = "child"
)
