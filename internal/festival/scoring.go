package festival

import (
	"cmp"
	"slices"
	"strconv"
)

// ScoreEntry is one judge-submitted raw score and grade. Scores are keyed by
// code letter, so the judge never sees participant identities: in an
// individual program every participant has its own letter, in a group program
// one entry covers the whole sub-team chunk.
type ScoreEntry struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

// SubmitScores applies a judge's scores to the program and finalizes it:
// participant points are computed from score and grade, a single ranking is
// built across all teams, team aggregates and a second-pass team ranking are
// derived, and the program moves JUDGING → COMPLETED with green-room
// visibility cleared. Missing entries default to a zero score and empty
// grade rather than rejecting the submission; the confirmation dialog in the
// judge UI is the only completeness check.
func (p *Program) SubmitScores(scores map[string]ScoreEntry) error {
	if p.Status != StatusJudging {
		return ErrNotJudging
	}

	// One score/grade pair per code entity; every chunk member gets a copy.
	for _, e := range p.entities() {
		entry := scores[e[0].CodeLetter]
		points := CalculatePoints(entry.Score, entry.Grade, p.IsGroup)
		for i := range e {
			e[i].Score = entry.Score
			e[i].Grade = entry.Grade
			e[i].Points = points
		}
	}

	// Global ranking across all teams: points descending, ties broken by
	// chest number ascending.
	var ranked []*Participant
	for ti := range p.Teams {
		for pi := range p.Teams[ti].Participants {
			ranked = append(ranked, &p.Teams[ti].Participants[pi])
		}
	}
	slices.SortStableFunc(ranked, func(a, b *Participant) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return compareChest(a.ChestNumber, b.ChestNumber)
	})
	for i, pt := range ranked {
		pt.Rank = i + 1
	}

	// Team aggregates: the best performer represents the team for score and
	// grade. Group team points are the best chunk's shared points, individual
	// team points are the sum over the roster.
	for ti := range p.Teams {
		t := &p.Teams[ti]
		if len(t.Participants) == 0 {
			continue
		}
		best := t.Participants[0]
		sum := 0.0
		for _, pt := range t.Participants {
			sum += pt.Points
			if pt.Points > best.Points {
				best = pt
			}
		}
		t.Score = best.Score
		t.Grade = best.Grade
		if p.IsGroup {
			t.Points = best.Points
		} else {
			t.Points = sum
		}
	}

	// Second pass: team ranks from team points alone, independent of the
	// participant ranking.
	order := make([]*Team, len(p.Teams))
	for i := range p.Teams {
		order[i] = &p.Teams[i]
	}
	slices.SortStableFunc(order, func(a, b *Team) int {
		return cmp.Compare(b.Points, a.Points)
	})
	for i, t := range order {
		t.Rank = i + 1
	}

	p.Status = StatusCompleted
	p.IsPublished = false
	return nil
}

// compareChest orders chest numbers numerically when both parse, falling back
// to string order otherwise.
func compareChest(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return cmp.Compare(a, b)
}
