package festival

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatusEdit(t *testing.T) {
	tests := []struct {
		name    string
		current ProgramStatus
		next    ProgramStatus
		wantErr bool
	}{
		{"same status is a no-op", StatusPending, StatusPending, false},
		{"pending can be cancelled", StatusPending, StatusCancelled, false},
		{"cancelled can be reopened", StatusCancelled, StatusPending, false},
		{"completed cannot be set directly", StatusPending, StatusCompleted, true},
		{"judging requires allocation", StatusPending, StatusJudging, true},
		{"cancelled cannot jump to judging", StatusCancelled, StatusJudging, true},
		{"judging is locked", StatusJudging, StatusPending, true},
		{"judging cannot be cancelled via edit", StatusJudging, StatusCancelled, true},
		{"completed is locked", StatusCompleted, StatusPending, true},
		{"completed to completed is a no-op", StatusCompleted, StatusCompleted, false},
		{"unknown status rejected", StatusPending, ProgramStatus("ARCHIVED"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatusEdit(tt.current, tt.next)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func judgeReadyProgram() *Program {
	p := individualProgram("201", "301")
	p.IsPublished = true
	rng := rand.New(rand.NewSource(1))
	p.AssignCodes(rng)
	for _, chest := range []string{"201", "301"} {
		if _, err := p.RevealCode(chest, rng); err != nil {
			panic(err)
		}
	}
	return p
}

func TestAllocate(t *testing.T) {
	p := judgeReadyProgram()
	require.NoError(t, p.Allocate("Stage 1"))
	assert.Equal(t, StatusJudging, p.Status)
	assert.True(t, p.IsAllocatedToJudge)
	assert.Equal(t, "Stage 1", p.JudgePanel)
}

func TestAllocateGuards(t *testing.T) {
	t.Run("not published", func(t *testing.T) {
		p := judgeReadyProgram()
		p.IsPublished = false
		assert.ErrorIs(t, p.Allocate("Stage 1"), ErrNotPublished)
	})

	t.Run("codes not revealed", func(t *testing.T) {
		p := individualProgram("201", "301")
		p.IsPublished = true
		p.AssignCodes(rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, p.Allocate("Stage 1"), ErrCodesNotRevealed)
	})

	t.Run("empty panel", func(t *testing.T) {
		p := judgeReadyProgram()
		assert.ErrorIs(t, p.Allocate(""), ErrNoJudgePanel)
	})

	t.Run("wrong status", func(t *testing.T) {
		p := judgeReadyProgram()
		require.NoError(t, p.Allocate("Stage 1"))
		assert.Error(t, p.Allocate("Stage 1"))
	})
}

func TestReevaluate(t *testing.T) {
	p := &Program{Status: StatusCompleted}
	require.NoError(t, p.Reevaluate())
	assert.Equal(t, StatusJudging, p.Status)
	assert.True(t, p.IsAllocatedToJudge)

	p = &Program{Status: StatusPending}
	assert.ErrorIs(t, p.Reevaluate(), ErrNotCompleted)
}

func TestCancel(t *testing.T) {
	for _, status := range []ProgramStatus{StatusPending, StatusJudging} {
		p := &Program{Status: status}
		require.NoError(t, p.Cancel())
		assert.Equal(t, StatusCancelled, p.Status)
	}
	for _, status := range []ProgramStatus{StatusCompleted, StatusCancelled} {
		p := &Program{Status: status}
		assert.Error(t, p.Cancel())
	}
}

func TestSetResultPublished(t *testing.T) {
	p := &Program{Status: StatusCompleted}
	require.NoError(t, p.SetResultPublished(true))
	assert.True(t, p.IsResultPublished)
	require.NoError(t, p.SetResultPublished(false))
	assert.False(t, p.IsResultPublished)

	p = &Program{Status: StatusJudging}
	assert.ErrorIs(t, p.SetResultPublished(true), ErrNotCompleted)
}
