package policy

import "strings"

// Table is the age-policy lookup consulted when a member has no explicit
// allow or block entry of their own. All sets are fixed at construction.
type Table struct {
	allowedApps    map[AgeGroup]map[string]struct{}
	blockedApps    map[AgeGroup]map[string]struct{}
	blockedDomains map[AgeGroup][]string
	keywords       map[AgeGroup][]string
}

// AppRule reports whether the table has an explicit rule for (group, app)
// and, if so, whether it allows the app.
func (t *Table) AppRule(group AgeGroup, app string) (allowed, ok bool) {
	if _, found := t.allowedApps[group][app]; found {
		return true, true
	}
	if _, found := t.blockedApps[group][app]; found {
		return false, true
	}
	return false, false
}

// BlockedDomain reports whether host matches one of the group's blocked
// domain fragments. Matching is case-insensitive substring matching, so a
// fragment like "casino" also covers "casino-games.example".
func (t *Table) BlockedDomain(group AgeGroup, host string) (fragment string, blocked bool) {
	host = strings.ToLower(host)
	for _, f := range t.blockedDomains[group] {
		if strings.Contains(host, f) {
			return f, true
		}
	}
	return "", false
}

// BlockedKeyword reports whether the lower-cased text contains a keyword
// from the group's inappropriate-content set.
func (t *Table) BlockedKeyword(group AgeGroup, text string) (keyword string, blocked bool) {
	text = strings.ToLower(text)
	for _, k := range t.keywords[group] {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

// Keywords returns the effective keyword set for a group. The slice is a
// copy; mutating it does not affect the table.
func (t *Table) Keywords(group AgeGroup) []string {
	out := make([]string, len(t.keywords[group]))
	copy(out, t.keywords[group])
	return out
}

// baseKeywords is blocked for every age group.
var baseKeywords = []string{"violence", "drugs", "gambling", "weapons", "alcohol"}

// extraKeywords are layered on top of the base set. A group inherits every
// extra declared for it and for all older non-adult groups below it in this
// table, so younger groups always carry a superset.
var extraKeywords = map[AgeGroup][]string{
	MiddleSchool: {"explicit"},
	Elementary:   {"horror", "gore"},
	Preschool:    {"scary"},
	Toddler:      {"monster"},
}

// Default builds the stock household policy table.
func Default() *Table {
	t := &Table{
		allowedApps: map[AgeGroup]map[string]struct{}{
			Toddler:      appSet("ABC Learning", "Toddler Tunes"),
			Preschool:    appSet("ABC Learning", "Toddler Tunes", "Drawing Pad", "Story Time"),
			Elementary:   appSet("Khan Academy Kids", "Scratch Jr", "Math Blaster", "Story Time"),
			MiddleSchool: appSet("Family Chat", "Khan Academy", "Scratch", "Word Processor"),
			HighSchool:   appSet("Family Chat", "Khan Academy", "Study Hub", "Code Editor", "Word Processor"),
		},
		blockedApps: map[AgeGroup]map[string]struct{}{
			Toddler:      appSet("Web Browser", "App Store", "Video Stream"),
			Preschool:    appSet("Web Browser", "App Store", "Video Stream"),
			Elementary:   appSet("App Store", "Social Stream"),
			MiddleSchool: appSet("Casino Royale", "Social Stream"),
			HighSchool:   appSet("Casino Royale"),
		},
		blockedDomains: map[AgeGroup][]string{
			Toddler:      {"casino", "bet", "adult", "gore", "socialstream", "videotube"},
			Preschool:    {"casino", "bet", "adult", "gore", "socialstream", "videotube"},
			Elementary:   {"casino", "bet", "adult", "gore", "socialstream"},
			MiddleSchool: {"casino", "bet", "adult", "gore"},
			HighSchool:   {"casino", "bet", "adult"},
		},
		keywords: make(map[AgeGroup][]string),
	}

	// Accumulate keyword extras from HighSchool down to Toddler.
	acc := append([]string(nil), baseKeywords...)
	t.keywords[Adult] = append([]string(nil), baseKeywords...)
	for g := HighSchool; g >= Toddler; g-- {
		acc = append(acc, extraKeywords[g]...)
		t.keywords[g] = append([]string(nil), acc...)
	}
	return t
}

func appSet(apps ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		s[a] = struct{}{}
	}
	return s
}
