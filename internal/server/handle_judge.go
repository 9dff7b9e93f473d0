package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artsfest/festboard/internal/festival"
)

// ScoreSheet is a judge's submission: one entry per code letter. For group
// programs a letter covers a whole sub-team chunk.
type ScoreSheet struct {
	Scores map[string]festival.ScoreEntry `json:"scores"`
}

// JudgeEntity is one anonymized row on the judge's sheet.
type JudgeEntity struct {
	CodeLetter  string  `json:"codeLetter"`
	MemberCount int     `json:"memberCount"`
	Score       float64 `json:"score"`
	Grade       string  `json:"grade"`
}

// JudgeProgram is a program as the judge sees it: no names, no chest
// numbers, just code letters.
type JudgeProgram struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	StartTime string              `json:"startTime"`
	Venue     string              `json:"venue"`
	IsGroup   bool                `json:"isGroup"`
	Entities  []JudgeEntity       `json:"entities"`
	Status    festival.ProgramStatus `json:"status"`
}

func judgeView(p festival.Program) JudgeProgram {
	jp := JudgeProgram{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		StartTime: p.StartTime,
		Venue:     p.Venue,
		IsGroup:   p.IsGroup,
		Status:    p.Status,
	}
	for _, t := range p.Teams {
		for _, chunk := range festival.ChunkParticipants(t.Participants, p.ChunkSize()) {
			jp.Entities = append(jp.Entities, JudgeEntity{
				CodeLetter:  chunk[0].CodeLetter,
				MemberCount: len(chunk),
				Score:       chunk[0].Score,
				Grade:       chunk[0].Grade,
			})
		}
	}
	return jp
}

// handleJudgePrograms lists the programs currently with the requesting
// judge's panel, anonymized to code letters.
func handleJudgePrograms(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := requestUser(r)

		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		assigned := []JudgeProgram{}
		for _, p := range programs {
			if p.Status != festival.StatusJudging {
				continue
			}
			if u.Role == RoleJudge && p.JudgePanel != u.JudgePanel {
				continue
			}
			assigned = append(assigned, judgeView(p))
		}
		writeJSON(w, http.StatusOK, assigned)
	}
}

// handleSubmitScores runs the scoring and ranking engine and completes the
// program in one persisted write: teams, status, and the cleared green-room
// flag land together.
func handleSubmitScores(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sheet ScoreSheet
		if err := readJSON(r, &sheet); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		u := requestUser(r)

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if u.Role == RoleJudge && p.JudgePanel != u.JudgePanel {
				return ProgramPatch{}, festival.ErrNotJudging
			}
			if err := p.SubmitScores(sheet.Scores); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{
				Status:      &p.Status,
				IsPublished: &p.IsPublished,
				Teams:       &p.Teams,
			}, nil
		})
	}
}
