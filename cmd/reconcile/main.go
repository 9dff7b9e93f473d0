// Command reconcile repairs team assignments outside the interactive app:
// it lists every program once, previews the moves the chest-number invariant
// dictates, and (with -apply) writes the rebuilt team lists back, one
// concurrent write per changed program.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/artsfest/festboard/internal/config"
	"github.com/artsfest/festboard/internal/database"
	"github.com/artsfest/festboard/internal/festival"
	"github.com/artsfest/festboard/internal/server"
)

func main() {
	apply := flag.Bool("apply", false, "write the repaired team lists (default is a dry-run report)")
	flag.Parse()

	if err := run(context.Background(), *apply); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, apply bool) error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	store, err := server.NewDocStore(ctx, db, nil, logger)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	programs, err := store.ListPrograms(ctx)
	if err != nil {
		return fmt.Errorf("listing programs: %w", err)
	}

	moves := festival.ReconcileReport(programs)
	if len(moves) == 0 {
		fmt.Println("all team assignments match chest numbers; nothing to do")
		return nil
	}
	for _, m := range moves {
		to := m.ToTeam
		if to == "" {
			to = "(dropped: chest number out of range)"
		}
		fmt.Printf("%-6s %-24s %-32s %s -> %s\n", m.ChestNumber, m.Name, m.ProgramName, m.FromTeam, to)
	}

	if !apply {
		fmt.Printf("%d move(s) found; re-run with -apply to fix\n", len(moves))
		return nil
	}

	var (
		mu     sync.Mutex
		result server.BatchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range programs {
		teams, changed := festival.RebuildTeams(p, logger)
		if !changed {
			continue
		}
		id := p.ID
		g.Go(func() error {
			err := store.UpdateProgram(gctx, id, server.ProgramPatch{Teams: &teams})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("write failed", "program", id, "error", err)
				result.Failed = append(result.Failed, id)
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			return nil
		})
	}
	g.Wait()

	fmt.Printf("updated %d program(s), %d failed\n", len(result.Succeeded), len(result.Failed))
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d writes failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
	}
	return nil
}
