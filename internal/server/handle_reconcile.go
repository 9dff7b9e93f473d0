package server

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/artsfest/festboard/internal/festival"
)

// ReconcileResponse is the outcome of applying the team-data repair.
type ReconcileResponse struct {
	Moves  []festival.Move `json:"moves"`
	Result BatchResult     `json:"result"`
}

// handleReconcileReport previews the repair without writing anything.
func handleReconcileReport(store Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		moves := festival.ReconcileReport(programs)
		if moves == nil {
			moves = []festival.Move{}
		}
		writeJSON(w, http.StatusOK, moves)
	}
}

// handleReconcileApply rebuilds team assignments from chest numbers across
// the whole collection. Only programs whose team list actually changes are
// written; the writes run concurrently and partial failure is reported, not
// rolled back. Running it twice is a no-op the second time.
func handleReconcileApply(store Gateway, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programs, err := store.ListPrograms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := ReconcileResponse{
			Moves:  festival.ReconcileReport(programs),
			Result: BatchResult{Succeeded: []string{}, Failed: []string{}},
		}
		if resp.Moves == nil {
			resp.Moves = []festival.Move{}
		}

		var mu sync.Mutex
		g, ctx := errgroup.WithContext(r.Context())
		for _, p := range programs {
			teams, changed := festival.RebuildTeams(p, logger)
			if !changed {
				continue
			}
			id := p.ID
			g.Go(func() error {
				err := store.UpdateProgram(ctx, id, ProgramPatch{Teams: &teams})
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logger.Warn("reconcile write failed", "program", id, "error", err)
					resp.Result.Failed = append(resp.Result.Failed, id)
				} else {
					resp.Result.Succeeded = append(resp.Result.Succeeded, id)
				}
				return nil
			})
		}
		g.Wait()

		writeJSON(w, http.StatusOK, resp)
	}
}
