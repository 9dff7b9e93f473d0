package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/artsfest/festboard/internal/festival"
)

func newTeamID() string { return uuid.NewString() }

// ProgramRequest is the request body for creating a program.
type ProgramRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	StartTime   string `json:"startTime"`
	Venue       string `json:"venue"`
	Description string `json:"description"`

	IsGroup           bool `json:"isGroup"`
	ParticipantsCount int  `json:"participantsCount"`
	GroupCount        int  `json:"groupCount"`
	MembersPerGroup   int  `json:"membersPerGroup"`
}

func (req *ProgramRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		return "name is required"
	}
	if req.Category == "" {
		return "category is required"
	}
	if req.IsGroup && req.MembersPerGroup <= 0 {
		return "membersPerGroup must be positive for group programs"
	}
	return ""
}

// StatusRequest is the body of the raw status edit endpoint.
type StatusRequest struct {
	Status festival.ProgramStatus `json:"status"`
}

// ParticipantRequest registers one participant into a program.
type ParticipantRequest struct {
	Name        string `json:"name"`
	ChestNumber string `json:"chestNumber"`
	Role        string `json:"role"`
}

func (req *ParticipantRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.ChestNumber = strings.TrimSpace(req.ChestNumber)
	if req.Name == "" {
		return "name is required"
	}
	if req.ChestNumber == "" {
		return "chestNumber is required"
	}
	if _, ok := festival.TeamForChest(req.ChestNumber); !ok {
		return fmt.Sprintf("chest number %q is outside every team range", req.ChestNumber)
	}
	return ""
}

func handleListPrograms(store Gateway) http.HandlerFunc {
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

func handleCreateProgram(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProgramRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		p := festival.Program{
			Name:              req.Name,
			Category:          req.Category,
			StartTime:         req.StartTime,
			Venue:             req.Venue,
			Description:       req.Description,
			IsGroup:           req.IsGroup,
			ParticipantsCount: req.ParticipantsCount,
			GroupCount:        req.GroupCount,
			MembersPerGroup:   req.MembersPerGroup,
			Status:            festival.StatusPending,
		}
		id, err := store.CreateProgram(r.Context(), p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		p.ID = id
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleGetProgram(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProgram(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "program not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleUpdateProgram(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch ProgramPatch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := store.GetProgram(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "program not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// The edit form cannot bypass the workflow state machine.
		if patch.Status != nil {
			if err := festival.ValidateStatusEdit(p.Status, *patch.Status); err != nil {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
		}
		if patch.IsResultPublished != nil {
			if err := p.SetResultPublished(*patch.IsResultPublished); err != nil {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
		}

		if err := store.UpdateProgram(r.Context(), id, patch); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		updated, err := store.GetProgram(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteProgram(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteProgram(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "program not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		statusOK(w)
	}
}

func handleSetStatus(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req StatusRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		withProgram(w, r, store, id, func(p *festival.Program) (ProgramPatch, error) {
			if err := festival.ValidateStatusEdit(p.Status, req.Status); err != nil {
				return ProgramPatch{}, err
			}
			p.Status = req.Status
			return ProgramPatch{Status: &p.Status}, nil
		})
	}
}

func handleReevaluate(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if err := p.Reevaluate(); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{
				Status:             &p.Status,
				IsAllocatedToJudge: &p.IsAllocatedToJudge,
			}, nil
		})
	}
}

func handleCancelProgram(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if err := p.Cancel(); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{Status: &p.Status}, nil
		})
	}
}

func handleAddParticipant(store Gateway) http.HandlerFunc {
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

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if err := registerParticipant(p, req); err != nil {
				return ProgramPatch{}, err
			}
			return ProgramPatch{Teams: &p.Teams}, nil
		})
	}
}

func handleRemoveParticipant(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chest := chi.URLParam(r, "chestNumber")

		withProgram(w, r, store, chi.URLParam(r, "id"), func(p *festival.Program) (ProgramPatch, error) {
			if !removeParticipant(p, chest) {
				return ProgramPatch{}, festival.ErrParticipantNotFound
			}
			return ProgramPatch{Teams: &p.Teams}, nil
		})
	}
}

// handleDeleteParticipantEverywhere removes a chest number from every program
// in the collection. The per-program writes run concurrently and the response
// reports per-document success, never rolling back the writes that landed.
func handleDeleteParticipantEverywhere(store Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chest := chi.URLParam(r, "chestNumber")

		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var (
			mu     sync.Mutex
			result BatchResult
		)
		g, ctx := errgroup.WithContext(r.Context())
		for _, p := range programs {
			p := p
			if p.ParticipantByChest(chest) == nil {
				continue
			}
			g.Go(func() error {
				removeParticipant(&p, chest)
				err := store.UpdateProgram(ctx, p.ID, ProgramPatch{Teams: &p.Teams})
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logger.Warn("participant removal failed", "program", p.ID, "error", err)
					result.Failed = append(result.Failed, p.ID)
				} else {
					result.Succeeded = append(result.Succeeded, p.ID)
				}
				return nil
			})
		}
		g.Wait()

		if result.Succeeded == nil {
			result.Succeeded = []string{}
		}
		if result.Failed == nil {
			result.Failed = []string{}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// registerParticipant places a participant into the team their chest number
// dictates, creating the team entry on first registration.
func registerParticipant(p *festival.Program, req ParticipantRequest) error {
	if p.ParticipantByChest(req.ChestNumber) != nil {
		return fmt.Errorf("chest number %s is already registered", req.ChestNumber)
	}
	teamName, _ := festival.TeamForChest(req.ChestNumber)

	pt := festival.Participant{
		Name:        req.Name,
		ChestNumber: req.ChestNumber,
		Role:        req.Role,
	}
	for ti := range p.Teams {
		if p.Teams[ti].TeamName == teamName {
			p.Teams[ti].Participants = append(p.Teams[ti].Participants, pt)
			return nil
		}
	}
	p.Teams = append(p.Teams, festival.Team{
		ID:           newTeamID(),
		TeamName:     teamName,
		Participants: []festival.Participant{pt},
	})
	return nil
}

// removeParticipant drops the participant and, when that empties a team,
// drops the team record too — empty teams are never persisted.
func removeParticipant(p *festival.Program, chestNumber string) bool {
	for ti := range p.Teams {
		members := p.Teams[ti].Participants
		for pi := range members {
			if members[pi].ChestNumber == chestNumber {
				p.Teams[ti].Participants = append(members[:pi:pi], members[pi+1:]...)
				if len(p.Teams[ti].Participants) == 0 {
					p.Teams = append(p.Teams[:ti:ti], p.Teams[ti+1:]...)
				}
				return true
			}
		}
	}
	return false
}

// withProgram loads a program, applies fn, and persists the returned patch.
// fn errors map to 409 (workflow guard violations are user errors, not
// server faults).
func withProgram(w http.ResponseWriter, r *http.Request, store Gateway, id string, fn func(*festival.Program) (ProgramPatch, error)) {
	p, err := store.GetProgram(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	patch, err := fn(&p)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if err := store.UpdateProgram(r.Context(), id, patch); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
