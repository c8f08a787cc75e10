package teamalias

import "fmt"

// CanonicalTeam groups every spelling a provider or scraped page may use for
// one club under a stable key.
type CanonicalTeam struct {
	Key     string
	Aliases []string
}

// Table is the alias configuration handed to NewMatcher. It is treated as
// immutable after construction.
type Table []CanonicalTeam

// DefaultTable covers the clubs the live blog tracks plus their usual league
// opponents, with and without diacritics and club-form prefixes.
func DefaultTable() Table {
	return Table{
		{Key: "real madrid", Aliases: []string{"real madrid", "real madrid cf", "r. madrid", "madrid"}},
		{Key: "barcelona", Aliases: []string{"barcelona", "fc barcelona", "barça", "barca"}},
		{Key: "atletico madrid", Aliases: []string{"atletico madrid", "atlético madrid", "atletico de madrid", "atlético de madrid", "atleti"}},
		{Key: "athletic club", Aliases: []string{"athletic club", "athletic bilbao", "ath bilbao"}},
		{Key: "real sociedad", Aliases: []string{"real sociedad", "la real"}},
		{Key: "deportivo alaves", Aliases: []string{"deportivo alaves", "deportivo alavés", "alaves", "alavés"}},
		{Key: "celta vigo", Aliases: []string{"celta vigo", "celta de vigo", "rc celta"}},
		{Key: "rayo vallecano", Aliases: []string{"rayo vallecano", "rayo"}},
		{Key: "real betis", Aliases: []string{"real betis", "betis"}},
		{Key: "sevilla", Aliases: []string{"sevilla", "sevilla fc"}},
		{Key: "valencia", Aliases: []string{"valencia", "valencia cf"}},
		{Key: "villarreal", Aliases: []string{"villarreal", "villarreal cf"}},
		{Key: "osasuna", Aliases: []string{"osasuna", "ca osasuna", "club atletico osasuna"}},
		{Key: "getafe", Aliases: []string{"getafe", "getafe cf"}},
		{Key: "girona", Aliases: []string{"girona", "girona fc"}},
		{Key: "mallorca", Aliases: []string{"mallorca", "rcd mallorca", "real mallorca"}},
		{Key: "espanyol", Aliases: []string{"espanyol", "rcd espanyol", "espanyol barcelona"}},
		{Key: "las palmas", Aliases: []string{"las palmas", "ud las palmas"}},
		{Key: "leganes", Aliases: []string{"leganes", "leganés", "cd leganes", "cd leganés"}},
		{Key: "valladolid", Aliases: []string{"valladolid", "real valladolid"}},
	}
}

// Validate reports aliases that appear under more than one canonical key.
// Overlap is a configuration defect: the matcher itself stays permissive at
// runtime, so deployments should assert this at startup.
func (t Table) Validate() error {
	seen := make(map[string]string)
	for _, team := range t {
		for _, alias := range team.Aliases {
			normalized := Normalize(alias)
			if normalized == "" {
				return fmt.Errorf("team %q has an empty alias", team.Key)
			}
			if owner, ok := seen[normalized]; ok && owner != team.Key {
				return fmt.Errorf("alias %q is claimed by both %q and %q", alias, owner, team.Key)
			}
			seen[normalized] = team.Key
		}
	}
	return nil
}
