package festival

import (
	"log/slog"
	"math"
	"slices"
)

// rankAwards are the fixed team points for placing in one program.
var rankAwards = map[int]float64{1: 10, 2: 7, 3: 5}

// Standings is the festival-wide team leaderboard derived from every
// COMPLETED program.
type Standings struct {
	Totals map[string]float64 `json:"totals"`
	Leader string             `json:"leader"`
	Margin float64            `json:"margin"`
}

// TeamStandings aggregates team totals over the full program collection:
// every COMPLETED program awards 10/7/5 points for team ranks 1/2/3, keyed by
// canonical team name. Legacy aliases are remapped; unknown team names are
// skipped with a warning so one bad document never breaks the leaderboard.
// Pure and recomputed on demand — no state is kept between calls.
func TeamStandings(programs []Program, logger *slog.Logger) Standings {
	totals := make(map[string]float64, len(CanonicalTeams))
	for _, t := range CanonicalTeams {
		totals[t.Name] = 0
	}

	for _, p := range programs {
		if p.Status != StatusCompleted {
			continue
		}
		for _, t := range p.Teams {
			award, ok := rankAwards[t.Rank]
			if !ok {
				continue
			}
			name, ok := CanonicalTeamName(t.TeamName)
			if !ok {
				logger.Warn("skipping unknown team name in standings",
					"team", t.TeamName, "program", p.Name)
				continue
			}
			totals[name] += award
		}
	}

	s := Standings{Totals: totals}
	for _, t := range CanonicalTeams {
		if s.Leader == "" || totals[t.Name] > totals[s.Leader] {
			s.Leader = t.Name
		}
	}
	runnerUp := math.Inf(-1)
	for _, t := range CanonicalTeams {
		if t.Name != s.Leader && totals[t.Name] > runnerUp {
			runnerUp = totals[t.Name]
		}
	}
	if !math.IsInf(runnerUp, -1) {
		s.Margin = totals[s.Leader] - runnerUp
	}
	return s
}

// Champion is one individual award winner with their accumulated points.
type Champion struct {
	Name        string  `json:"name"`
	ChestNumber string  `json:"chestNumber"`
	TeamName    string  `json:"teamName"`
	Points      float64 `json:"points"`
}

// pickChampion sums each participant's earned points across all COMPLETED,
// non-general programs matching the filter and returns the top accumulator.
// Candidates are visited in chest-number order and only a strictly greater
// total displaces the current leader, so ties resolve to the lowest chest
// number. Returns nil when no participant qualifies.
func pickChampion(programs []Program, include func(Category) bool) *Champion {
	type entry struct {
		name   string
		points float64
	}
	acc := make(map[string]*entry)

	for _, p := range programs {
		if p.Status != StatusCompleted {
			continue
		}
		c := ParseCategory(p.Category)
		if c.StageType == StageTypeGeneral {
			continue
		}
		if include != nil && !include(c) {
			continue
		}
		for _, t := range p.Teams {
			for _, pt := range t.Participants {
				e := acc[pt.ChestNumber]
				if e == nil {
					e = &entry{name: pt.Name}
					acc[pt.ChestNumber] = e
				}
				e.points += pt.Points
			}
		}
	}

	chests := make([]string, 0, len(acc))
	for chest := range acc {
		chests = append(chests, chest)
	}
	slices.SortFunc(chests, compareChest)

	var top *Champion
	for _, chest := range chests {
		e := acc[chest]
		if top != nil && e.points <= top.Points {
			continue
		}
		team, _ := TeamForChest(chest)
		top = &Champion{
			Name:        e.name,
			ChestNumber: chest,
			TeamName:    team,
			Points:      e.points,
		}
	}
	return top
}

// KalaPrathibha is the overall individual champion: the participant with the
// most accumulated points across all completed, non-general programs.
func KalaPrathibha(programs []Program) *Champion {
	return pickChampion(programs, nil)
}

// SargaPrathibha is the off-stage individual champion.
func SargaPrathibha(programs []Program) *Champion {
	return pickChampion(programs, func(c Category) bool {
		return c.StageType == StageTypeOffStage
	})
}

// ZoneChampion picks the individual champion within one zone.
func ZoneChampion(programs []Program, zone Zone) *Champion {
	return pickChampion(programs, func(c Category) bool {
		return c.Zone == zone
	})
}

// AgeGroupChampion picks the individual champion within one age group.
func AgeGroupChampion(programs []Program, age AgeGroup) *Champion {
	return pickChampion(programs, func(c Category) bool {
		return c.AgeGroup == age
	})
}
