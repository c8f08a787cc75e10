package teamalias

import (
	"strings"

	fuzzy "github.com/lithammer/fuzzysearch/fuzzy"
)

// suffix/prefix tokens that providers attach inconsistently ("Sevilla FC",
// "CD Leganés", "RCD Mallorca").
var clubFormTokens = map[string]struct{}{
	"cf":  {},
	"fc":  {},
	"cd":  {},
	"ud":  {},
	"sd":  {},
	"rcd": {},
	"rc":  {},
}

// Normalize lowercases a team name, removes club-form tokens and collapses
// whitespace. Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	kept := fields[:0]
	for _, field := range fields {
		if _, ok := clubFormTokens[field]; ok {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// Matcher answers whether two free-form team names refer to the same club.
type Matcher struct {
	table Table
}

func NewMatcher(table Table) *Matcher {
	return &Matcher{table: table}
}

// TeamsMatch is symmetric and never errors. Two names match when, after
// normalization, one contains the other, or when both fall inside the same
// canonical alias group. Containment is deliberately permissive so that
// "Alavés" matches "Deportivo Alavés"; the fixture resolver's date-proximity
// ranking arbitrates the rare collision.
func (m *Matcher) TeamsMatch(a, b string) bool {
	left := Normalize(a)
	right := Normalize(b)
	if left == "" || right == "" {
		return false
	}
	if namesContain(left, right) {
		return true
	}

	for _, team := range m.table {
		members := make([]string, 0, len(team.Aliases)+1)
		members = append(members, Normalize(team.Key))
		for _, alias := range team.Aliases {
			members = append(members, Normalize(alias))
		}

		if groupHas(members, left) && groupHas(members, right) {
			return true
		}
	}
	return false
}

// IsTrackedClub reports whether name refers to the tracked club. On top of
// TeamsMatch it runs a diacritic-folding fuzzy check, trading a little
// precision for recall: missing the tracked club skips a whole match sync,
// while a false positive is discarded by the resolver.
func (m *Matcher) IsTrackedClub(name, trackedName string) bool {
	if m.TeamsMatch(name, trackedName) {
		return true
	}
	candidate := Normalize(name)
	tracked := Normalize(trackedName)
	if candidate == "" || tracked == "" {
		return false
	}
	return fuzzy.MatchNormalizedFold(tracked, candidate)
}

func namesContain(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func groupHas(members []string, name string) bool {
	for _, member := range members {
		if member == "" {
			continue
		}
		if namesContain(member, name) {
			return true
		}
	}
	return false
}
