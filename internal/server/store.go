package server

import (
	"context"
	"errors"

	"github.com/artsfest/festboard/internal/festival"
)

var ErrNotFound = errors.New("not found")

// Dashboard roles. A judge is scoped to one panel, a team leader to one
// canonical team.
const (
	RoleAdmin      = "admin"
	RoleGreenRoom  = "greenroom"
	RoleJudge      = "judge"
	RoleTeamLeader = "teamleader"
)

// User is a dashboard account with its role-specific scope.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	JudgePanel   string `json:"judgePanel,omitempty"`
	TeamName     string `json:"teamName,omitempty"`
}

// ProgramPatch is a partial program update: nil fields are left untouched.
// Handlers rely on this heavily, e.g. rewriting only Teams after scoring.
type ProgramPatch struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	Venue       *string `json:"venue,omitempty"`
	Description *string `json:"description,omitempty"`

	IsGroup           *bool `json:"isGroup,omitempty"`
	ParticipantsCount *int  `json:"participantsCount,omitempty"`
	GroupCount        *int  `json:"groupCount,omitempty"`
	MembersPerGroup   *int  `json:"membersPerGroup,omitempty"`

	Status             *festival.ProgramStatus `json:"status,omitempty"`
	IsPublished        *bool                   `json:"isPublished,omitempty"`
	IsAllocatedToJudge *bool                   `json:"isAllocatedToJudge,omitempty"`
	JudgePanel         *string                 `json:"judgePanel,omitempty"`
	IsResultPublished  *bool                   `json:"isResultPublished,omitempty"`

	Teams *[]festival.Team `json:"teams,omitempty"`
}

func (patch ProgramPatch) apply(p *festival.Program) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.StartTime != nil {
		p.StartTime = *patch.StartTime
	}
	if patch.Venue != nil {
		p.Venue = *patch.Venue
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.IsGroup != nil {
		p.IsGroup = *patch.IsGroup
	}
	if patch.ParticipantsCount != nil {
		p.ParticipantsCount = *patch.ParticipantsCount
	}
	if patch.GroupCount != nil {
		p.GroupCount = *patch.GroupCount
	}
	if patch.MembersPerGroup != nil {
		p.MembersPerGroup = *patch.MembersPerGroup
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsPublished != nil {
		p.IsPublished = *patch.IsPublished
	}
	if patch.IsAllocatedToJudge != nil {
		p.IsAllocatedToJudge = *patch.IsAllocatedToJudge
	}
	if patch.JudgePanel != nil {
		p.JudgePanel = *patch.JudgePanel
	}
	if patch.IsResultPublished != nil {
		p.IsResultPublished = *patch.IsResultPublished
	}
	if patch.Teams != nil {
		p.Teams = *patch.Teams
	}
}

// ProgramUpdate pairs a program id with its partial update for batch writes.
type ProgramUpdate struct {
	ID    string
	Patch ProgramPatch
}

// BatchResult reports per-document outcomes of a best-effort batch write.
// Succeeded writes are never rolled back when others fail.
type BatchResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Gateway is the persistence boundary the dashboard depends on. Every
// single-program write is atomic; operations spanning programs are
// best-effort with no cross-document transaction.
type Gateway interface {
	ListPrograms(ctx context.Context) ([]festival.Program, error)
	GetProgram(ctx context.Context, id string) (festival.Program, error)
	CreateProgram(ctx context.Context, p festival.Program) (string, error)
	UpdateProgram(ctx context.Context, id string, patch ProgramPatch) error
	DeleteProgram(ctx context.Context, id string) error
	BatchUpdatePrograms(ctx context.Context, updates []ProgramUpdate) error

	UserByUsername(ctx context.Context, username string) (User, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	SessionUser(ctx context.Context, sessionID string) (User, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
