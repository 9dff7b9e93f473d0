package festival

// ChunkParticipants partitions a team's participant list into consecutive
// sub-team chunks of the given size; the last chunk may be smaller. Chunk
// boundaries are never persisted — every caller (code assignment, scoring,
// display) recomputes them through this one function. A size of zero or less
// yields a single chunk.
func ChunkParticipants(participants []Participant, size int) [][]Participant {
	if len(participants) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]Participant{participants}
	}

	var chunks [][]Participant
	for start := 0; start < len(participants); start += size {
		end := start + size
		if end > len(participants) {
			end = len(participants)
		}
		chunks = append(chunks, participants[start:end])
	}
	return chunks
}

// ChunkSize returns the sub-team chunk size for a program: membersPerGroup
// for group programs, 1 for individual ones (each participant is its own
// entity).
func (p *Program) ChunkSize() int {
	if p.IsGroup && p.MembersPerGroup > 0 {
		return p.MembersPerGroup
	}
	return 1
}
