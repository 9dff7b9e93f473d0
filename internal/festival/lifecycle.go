package festival

import (
	"errors"
	"fmt"
)

// Lifecycle guard errors. The messages are user-visible: handlers pass them
// through to the dashboard as-is.
var (
	ErrNotPublished     = errors.New("program must be published to the green room first")
	ErrCodesNotRevealed = errors.New("every participant code must be revealed before allocation")
	ErrNoJudgePanel     = errors.New("a judge panel must be selected")
	ErrNotJudging       = errors.New("program is not with the judges")
	ErrNotCompleted     = errors.New("program is not completed")
)

// validStatuses guards raw status writes coming from the admin edit form.
var validStatuses = map[ProgramStatus]bool{
	StatusPending:   true,
	StatusJudging:   true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ValidateStatusEdit checks a direct status edit from the admin's raw status
// selector. The selector may not bypass the workflow: JUDGING is entered only
// through allocation and left through score submission or recall, COMPLETED
// is only reachable via score submission and only leavable via re-evaluate.
// Direct edits can only target PENDING or CANCELLED.
func ValidateStatusEdit(current, next ProgramStatus) error {
	if !validStatuses[next] {
		return fmt.Errorf("unknown status %q", next)
	}
	if next == current {
		return nil
	}
	if next == StatusCompleted {
		return errors.New("COMPLETED is set by submitting scores, not by editing status")
	}
	if next == StatusJudging {
		return errors.New("JUDGING is entered by allocating to a judge panel, not by editing status")
	}
	if current == StatusJudging {
		return errors.New("use Recall or Re-evaluate to move a program out of JUDGING")
	}
	if current == StatusCompleted {
		return errors.New("use Re-evaluate to reopen a completed program")
	}
	return nil
}

// Allocate hands a published program to a judge panel, moving it from
// PENDING to JUDGING. Requires green-room publication, every code revealed,
// and a non-empty panel name.
func (p *Program) Allocate(panel string) error {
	if p.Status != StatusPending {
		return fmt.Errorf("cannot allocate a %s program", p.Status)
	}
	if !p.IsPublished {
		return ErrNotPublished
	}
	if !p.AllCodesRevealed() {
		return ErrCodesNotRevealed
	}
	if panel == "" {
		return ErrNoJudgePanel
	}
	p.Status = StatusJudging
	p.IsAllocatedToJudge = true
	p.JudgePanel = panel
	return nil
}

// Reevaluate reopens a COMPLETED program for the judges. Stored scores are
// kept until a resubmission overwrites them.
func (p *Program) Reevaluate() error {
	if p.Status != StatusCompleted {
		return ErrNotCompleted
	}
	p.Status = StatusJudging
	p.IsAllocatedToJudge = true
	return nil
}

// Cancel marks a PENDING or JUDGING program as CANCELLED.
func (p *Program) Cancel() error {
	if p.Status != StatusPending && p.Status != StatusJudging {
		return fmt.Errorf("cannot cancel a %s program", p.Status)
	}
	p.Status = StatusCancelled
	return nil
}

// SetResultPublished toggles public results visibility. Only meaningful once
// the program is COMPLETED; it never changes the status itself.
func (p *Program) SetResultPublished(published bool) error {
	if p.Status != StatusCompleted {
		return ErrNotCompleted
	}
	p.IsResultPublished = published
	return nil
}
