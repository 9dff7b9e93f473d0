package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artsfest/festboard/internal/festival"
)

// handleTeamPrograms lists all programs for a team leader. The collection is
// returned whole; the leader's team name comes back in /api/me and scopes
// what the dashboard lets them edit.
func handleTeamPrograms(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if programs == nil {
			programs = []festival.Program{}
		}
		writeJSON(w, http.StatusOK, programs)
	}
}

// handleTeamRegister lets a team leader register a participant into a PENDING
// program. The chest number must belong to the leader's own team.
func handleTeamRegister(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParticipantRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		u := requestUser(r)
		if u.Role == RoleTeamLeader {
			home, _ := festival.TeamForChest(req.ChestNumber)
			if home != u.TeamName {
				writeError(w, http.StatusForbidden,
					fmt.Sprintf("chest number %s does not belong to %s", req.ChestNumber, u.TeamName))
				return
			}
		}

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if p.Status != festival.StatusPending {
				return ProgramPatch{}, fmt.Errorf("registration is closed for a %s program", p.Status)
			}
			if err := registerParticipant(p, req); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{Teams: &p.Teams}, nil
		})
	}
}

// handleTeamRemove lets a team leader withdraw one of their own participants
// from a PENDING program.
func handleTeamRemove(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chest := chi.URLParam(r, "chestNumber")

		u := requestUser(r)
		if u.Role == RoleTeamLeader {
			home, _ := festival.TeamForChest(chest)
			if home != u.TeamName {
				writeError(w, http.StatusForbidden,
					fmt.Sprintf("chest number %s does not belong to %s", chest, u.TeamName))
				return
			}
		}

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if p.Status != festival.StatusPending {
				return ProgramPatch{}, fmt.Errorf("registration is closed for a %s program", p.Status)
			}
			if !removeParticipant(p, chest) {
				return ProgramPatch{}, festival.ErrParticipantNotFound
			}
			return ProgramPatch{Teams: &p.Teams}, nil
		})
	}
}
