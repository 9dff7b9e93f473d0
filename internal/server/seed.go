package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/artsfest/festboard/internal/festival"
)

// SeedDemo creates the demo accounts and a pair of demo programs when the
// store is empty. Idempotent: does nothing once any user exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store *DocStore) error {
	existing, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	users := []struct {
		username string
		password string
		role     string
		panel    string
		team     string
	}{
		{"admin", "admin", RoleAdmin, "", ""},
		{"greenroom", "greenroom", RoleGreenRoom, "", ""},
		{"judge1", "judge1", RoleJudge, "Stage 1", ""},
		{"leader-prudentia", "prudentia", RoleTeamLeader, "", "PRUDENTIA"},
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		err = store.CreateUser(ctx, User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			JudgePanel:   u.panel,
			TeamName:     u.team,
		})
		if err != nil {
			return err
		}
	}

	programs := []festival.Program{
		{
			Name:              "Classical Solo",
			Category:          "B zone stage senior",
			StartTime:         "2026-01-12 10:00",
			Venue:             "Main Auditorium",
			Description:       "Individual classical vocal performance.",
			ParticipantsCount: 4,
			Status:            festival.StatusPending,
		},
		{
			Name:            "Group Dance",
			Category:        "A zone stage junior",
			StartTime:       "2026-01-12 14:00",
			Venue:           "Open Stage",
			Description:     "Seven-member group dance.",
			IsGroup:         true,
			GroupCount:      2,
			MembersPerGroup: 7,
			Status:          festival.StatusPending,
		},
	}
	for _, p := range programs {
		if _, err := store.CreateProgram(ctx, p); err != nil {
			return err
		}
	}

	logger.Info("seeded demo users and programs")
	return nil
}
