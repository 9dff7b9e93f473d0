// Package festival defines the core domain types and the workflow logic of
// the festival dashboard: the program lifecycle, anonymized code assignment,
// scoring and ranking, leaderboard aggregation, and team-data reconciliation.
// It has no HTTP or SQL dependencies — everything here is pure logic.
package festival

// ProgramStatus is the lifecycle state of a program.
type ProgramStatus string

const (
	StatusPending   ProgramStatus = "PENDING"
	StatusJudging   ProgramStatus = "JUDGING"
	StatusCompleted ProgramStatus = "COMPLETED"
	StatusCancelled ProgramStatus = "CANCELLED"
)

// Program is one competitive event. It owns the per-team rosters and all
// lifecycle flags; the persistence layer stores it as a single document.
type Program struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	StartTime   string `json:"startTime"`
	Venue       string `json:"venue"`
	Description string `json:"description"`

	IsGroup           bool `json:"isGroup"`
	ParticipantsCount int  `json:"participantsCount"`
	GroupCount        int  `json:"groupCount"`
	MembersPerGroup   int  `json:"membersPerGroup"`

	Status             ProgramStatus `json:"status"`
	IsPublished        bool          `json:"isPublished"`
	IsAllocatedToJudge bool          `json:"isAllocatedToJudge"`
	JudgePanel         string        `json:"judgePanel"`
	IsResultPublished  bool          `json:"isResultPublished"`

	Teams []Team `json:"teams"`
}

// Team is one festival-wide team's entry into one program. The result fields
// are set only when the program reaches COMPLETED.
type Team struct {
	ID           string        `json:"id"`
	TeamName     string        `json:"teamName"`
	Participants []Participant `json:"participants"`

	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
	Grade  string  `json:"grade"`
	Points float64 `json:"points"`
}

// Participant is one person's registration under one team within one program.
type Participant struct {
	Name           string `json:"name"`
	ChestNumber    string `json:"chestNumber"`
	CodeLetter     string `json:"codeLetter,omitempty"`
	IsCodeRevealed bool   `json:"isCodeRevealed"`
	Role           string `json:"role,omitempty"`

	Score  float64 `json:"score"`
	Grade  string  `json:"grade"`
	Points float64 `json:"points"`
	Rank   int     `json:"rank"`
}

// ParticipantByChest returns a pointer to the participant with the given
// chest number, or nil if no team contains it.
func (p *Program) ParticipantByChest(chestNumber string) *Participant {
	for ti := range p.Teams {
		for pi := range p.Teams[ti].Participants {
			if p.Teams[ti].Participants[pi].ChestNumber == chestNumber {
				return &p.Teams[ti].Participants[pi]
			}
		}
	}
	return nil
}

// AllCodesRevealed reports whether every participant in the program has a
// revealed code letter. Programs with no participants count as not ready.
func (p *Program) AllCodesRevealed() bool {
	any := false
	for _, t := range p.Teams {
		for _, pt := range t.Participants {
			any = true
			if pt.CodeLetter == "" || !pt.IsCodeRevealed {
				return false
			}
		}
	}
	return any
}
