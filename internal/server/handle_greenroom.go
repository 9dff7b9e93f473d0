package server

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artsfest/festboard/internal/festival"
)

// RevealRequest identifies the participant whose code is being scratched.
type RevealRequest struct {
	ChestNumber string `json:"chestNumber"`
}

// AllocateRequest assigns a program to a judge panel.
type AllocateRequest struct {
	JudgePanel string `json:"judgePanel"`
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// handleGreenRoomPrograms lists programs visible to the green room: published
// and still in the pre-completion part of the workflow.
func handleGreenRoomPrograms(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		visible := []festival.Program{}
		for _, p := range programs {
			if p.IsPublished {
				visible = append(visible, p)
			}
		}
		writeJSON(w, http.StatusOK, visible)
	}
}

// handlePublish toggles green-room visibility. Publication is independent of
// status: a program can be recalled even while PENDING.
func handlePublish(store Gateway, published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			p.IsPublished = published
			return ProgramPatch{IsPublished: &p.IsPublished}, nil
		})
	}
}

// handleAssignCodes shuffles anonymized code letters onto every entity that
// does not have one yet. Re-invocation preserves existing assignments.
func handleAssignCodes(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			p.AssignCodes(newRand())
			return ProgramPatch{Teams: &p.Teams}, nil
		})
	}
}

// handleReveal scratches one participant's code. Assignment and reveal land
// in the same persisted write when the participant had no code yet, so
// concurrent readers never observe an assigned-but-unrevealed window.
func handleReveal(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RevealRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ChestNumber = strings.TrimSpace(req.ChestNumber)
		if req.ChestNumber == "" {
			writeError(w, http.StatusBadRequest, "chestNumber is required")
			return
		}

		id := chi.URLParam(r, "id")
		p, err := store.GetProgram(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "program not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		changed, err := p.RevealCode(req.ChestNumber, newRand())
		if errors.Is(err, festival.ErrParticipantNotFound) {
			writeError(w, http.StatusNotFound, "participant not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if changed {
			if err := store.UpdateProgram(r.Context(), id, ProgramPatch{Teams: &p.Teams}); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// handleAllocate moves a PENDING program to the judges.
func handleAllocate(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AllocateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.JudgePanel = strings.TrimSpace(req.JudgePanel)

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if err := p.Allocate(req.JudgePanel); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{
				Status:             &p.Status,
				IsAllocatedToJudge: &p.IsAllocatedToJudge,
				JudgePanel:         &p.JudgePanel,
			}, nil
		})
	}
}
