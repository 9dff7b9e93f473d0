package festival

import (
	"errors"
	"math/rand"
)

// ErrParticipantNotFound is returned when a chest number does not match any
// participant in the program.
var ErrParticipantNotFound = errors.New("participant not found")

// codeEntity is one anonymizable unit: a single participant in an individual
// program, or a whole sub-team chunk in a group program. All members share
// one code letter.
type codeEntity []Participant

// entities returns the program's code entities in stable order: teams in
// stored order, chunks in roster order within each team. The slices alias the
// program's participant storage so assignments write through.
func (p *Program) entities() []codeEntity {
	size := p.ChunkSize()
	var out []codeEntity
	for ti := range p.Teams {
		for _, chunk := range ChunkParticipants(p.Teams[ti].Participants, size) {
			out = append(out, codeEntity(chunk))
		}
	}
	return out
}

// AssignCodes gives every entity without a code letter a letter drawn from a
// shuffled pool sized to the entity count. Existing assignments are preserved
// and their letters are excluded from the pool, so repeat invocations never
// reassign or collide. Returns whether anything changed.
func (p *Program) AssignCodes(rng *rand.Rand) bool {
	ents := p.entities()
	if len(ents) == 0 {
		return false
	}

	used := make(map[string]bool)
	for _, e := range ents {
		if e[0].CodeLetter != "" {
			used[e[0].CodeLetter] = true
		}
	}

	var pool []string
	for i := range ents {
		letter := string(rune('A' + i))
		if !used[letter] {
			pool = append(pool, letter)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	changed := false
	next := 0
	for _, e := range ents {
		if e[0].CodeLetter != "" {
			continue
		}
		if next >= len(pool) {
			break
		}
		letter := pool[next]
		next++
		for i := range e {
			e[i].CodeLetter = letter
		}
		changed = true
	}
	return changed
}

// RevealCode reveals the code of the participant with the given chest number,
// scratch-card style. Revealing propagates to every participant sharing the
// same letter, so a whole sub-team chunk is revealed together. If the
// participant has no code yet, codes are assigned first so that assign and
// reveal land in one persisted write. Reveal is one-way: there is no
// unreveal. Returns whether the program changed.
func (p *Program) RevealCode(chestNumber string, rng *rand.Rand) (bool, error) {
	target := p.ParticipantByChest(chestNumber)
	if target == nil {
		return false, ErrParticipantNotFound
	}

	changed := false
	if target.CodeLetter == "" {
		changed = p.AssignCodes(rng)
	}

	letter := target.CodeLetter
	if letter == "" {
		return changed, nil
	}
	for ti := range p.Teams {
		for pi := range p.Teams[ti].Participants {
			pt := &p.Teams[ti].Participants[pi]
			if pt.CodeLetter == letter && !pt.IsCodeRevealed {
				pt.IsCodeRevealed = true
				changed = true
			}
		}
	}
	return changed, nil
}
