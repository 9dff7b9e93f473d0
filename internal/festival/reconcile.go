package festival

import (
	"log/slog"
	"reflect"

	"github.com/google/uuid"
)

// Move describes one participant the reconciliation would relocate. An empty
// ToTeam means the chest number falls outside every canonical range and the
// participant would be dropped.
type Move struct {
	ChestNumber string `json:"chestNumber"`
	Name        string `json:"name"`
	ProgramID   string `json:"programId"`
	ProgramName string `json:"programName"`
	FromTeam    string `json:"fromTeam"`
	ToTeam      string `json:"toTeam"`
}

// ReconcileReport previews the team-data repair across the whole collection
// without mutating anything: every participant whose stored team disagrees
// with the team its chest number dictates becomes a Move.
func ReconcileReport(programs []Program) []Move {
	var moves []Move
	for _, p := range programs {
		for _, t := range p.Teams {
			for _, pt := range t.Participants {
				home, _ := TeamForChest(pt.ChestNumber)
				if t.TeamName == home {
					continue
				}
				moves = append(moves, Move{
					ChestNumber: pt.ChestNumber,
					Name:        pt.Name,
					ProgramID:   p.ID,
					ProgramName: p.Name,
					FromTeam:    t.TeamName,
					ToTeam:      home,
				})
			}
		}
	}
	return moves
}

// RebuildTeams re-derives a program's team list from chest numbers alone:
// participants are flattened out of their stored teams and partitioned into
// the canonical teams by chest range. Chest numbers outside every range are
// dropped with a warning. Team-level result fields follow the canonical
// name — they are copied from whichever original team already carried that
// name, not from the participants. Empty teams are never emitted.
//
// The second return value reports whether the rebuilt list actually differs
// from the stored one (generated ids excluded from the comparison); callers
// must skip the write when it does not, which is what makes the repair
// idempotent.
func RebuildTeams(p Program, logger *slog.Logger) ([]Team, bool) {
	buckets := make(map[string][]Participant)
	for _, t := range p.Teams {
		for _, pt := range t.Participants {
			home, ok := TeamForChest(pt.ChestNumber)
			if !ok {
				logger.Warn("dropping participant with out-of-range chest number",
					"chestNumber", pt.ChestNumber, "name", pt.Name, "program", p.Name)
				continue
			}
			buckets[home] = append(buckets[home], pt)
		}
	}

	var rebuilt []Team
	for _, identity := range CanonicalTeams {
		members := buckets[identity.Name]
		if len(members) == 0 {
			continue
		}
		t := Team{
			ID:           uuid.NewString(),
			TeamName:     identity.Name,
			Participants: members,
		}
		for _, orig := range p.Teams {
			if orig.TeamName == identity.Name {
				t.Score = orig.Score
				t.Rank = orig.Rank
				t.Grade = orig.Grade
				t.Points = orig.Points
				break
			}
		}
		rebuilt = append(rebuilt, t)
	}

	if teamsEqual(p.Teams, rebuilt) {
		return p.Teams, false
	}
	return rebuilt, true
}

// teamsEqual compares two team lists ignoring ids.
func teamsEqual(a, b []Team) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		x.ID, y.ID = "", ""
		if !reflect.DeepEqual(x, y) {
			return false
		}
	}
	return true
}
