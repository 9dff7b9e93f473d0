package festival

import "strconv"

// TeamIdentity is one canonical festival team and the chest-number range that
// defines its membership.
type TeamIdentity struct {
	Name     string
	ChestMin int
	ChestMax int
}

// CanonicalTeams lists the two competing festival teams in display order.
// Chest numbers are the sole source of truth for membership: 200–299 belong
// to PRUDENTIA, 300–399 to SAPIENTIA.
var CanonicalTeams = []TeamIdentity{
	{Name: "PRUDENTIA", ChestMin: 200, ChestMax: 299},
	{Name: "SAPIENTIA", ChestMin: 300, ChestMax: 399},
}

// teamAliases maps legacy team names still present in old documents onto the
// canonical names.
var teamAliases = map[string]string{
	"Team Alpha": "PRUDENTIA",
	"Team Beta":  "SAPIENTIA",
}

// CanonicalTeamName resolves a stored team name (canonical or legacy alias)
// to its canonical form. ok is false for unknown names.
func CanonicalTeamName(name string) (string, bool) {
	for _, t := range CanonicalTeams {
		if t.Name == name {
			return t.Name, true
		}
	}
	if canonical, ok := teamAliases[name]; ok {
		return canonical, true
	}
	return "", false
}

// TeamForChest returns the canonical team a chest number belongs to. ok is
// false when the chest number is not numeric or falls outside every range.
func TeamForChest(chestNumber string) (string, bool) {
	n, err := strconv.Atoi(chestNumber)
	if err != nil {
		return "", false
	}
	for _, t := range CanonicalTeams {
		if n >= t.ChestMin && n <= t.ChestMax {
			return t.Name, true
		}
	}
	return "", false
}
