package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
)

// Action is a bulk operation over the selection.
type Action string

const (
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
	ActionArchive   Action = "archive"
	ActionDelete    Action = "delete"
)

// ParseAction validates s.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actionDefs[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Destructive reports whether the action removes records.
func (a Action) Destructive() bool { return a == ActionDelete }

type actionDef struct {
	target      model.Status // empty for delete
	title       string
	description string
	confirm     string
	variant     string
	done        string
	notice      string
}

var actionDefs = map[Action]actionDef{
	ActionPublish: {
		target:      model.StatusReleased,
		title:       "Publish Movies?",
		description: "Are you sure you want to publish %d selected movie(s)? Their status will be set to 'Released'.",
		confirm:     "Publish Selected",
		variant:     "primary",
		done:        "Published",
		notice:      "Status set to 'Released'.",
	},
	ActionUnpublish: {
		target:      model.StatusDraft,
		title:       "Unpublish Movies?",
		description: "Are you sure you want to unpublish %d selected movie(s)? Their status will be set to 'Draft'.",
		confirm:     "Unpublish Selected",
		variant:     "warning",
		done:        "Unpublished",
		notice:      "Status set to 'Draft'.",
	},
	ActionArchive: {
		target:      model.StatusArchived,
		title:       "Archive Movies?",
		description: "Are you sure you want to archive %d selected movie(s)? Their status will be set to 'Archived'.",
		confirm:     "Archive Selected",
		variant:     "warning",
		done:        "Archived",
		notice:      "Status set to 'Archived'.",
	},
	ActionDelete: {
		title:       "Delete Selected Movies?",
		description: "Are you sure you want to permanently delete %d selected movie(s)? This action cannot be undone.",
		confirm:     "Delete Selected Permanently",
		variant:     "destructive",
		done:        "Deleted",
	},
}

// Phase is the dispatcher state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConfirming Phase = "confirming"
	PhaseApplying   Phase = "applying"
)

// Prompt is the confirmation shown before a batch runs.
type Prompt struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ConfirmText string `json:"confirmText"`
	Variant     string `json:"variant"`
}

// PendingBatch is an action captured for confirmation.  IDs is a snapshot
// of the selection at prepare time.
type PendingBatch struct {
	Action Action   `json:"action"`
	IDs    []string `json:"ids"`
	Prompt Prompt   `json:"prompt"`
}

// BatchState carries the Idle -> Confirming -> Applying -> Idle machine.
// The zero value is idle.
type BatchState struct {
	Phase   Phase         `json:"phase,omitempty"`
	Pending *PendingBatch `json:"pending,omitempty"`
}

func (b BatchState) current() Phase {
	if b.Phase == "" {
		return PhaseIdle
	}
	return b.Phase
}

// Prepare moves Idle -> Confirming.
func (b *BatchState) Prepare(action Action, ids []string) (*PendingBatch, error) {
	def, ok := actionDefs[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if b.current() != PhaseIdle {
		return nil, ErrBatchInProgress
	}
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	p := &PendingBatch{
		Action: action,
		IDs:    append([]string(nil), ids...),
		Prompt: Prompt{
			Title:       def.title,
			Description: fmt.Sprintf(def.description, len(ids)),
			ConfirmText: def.confirm,
			Variant:     def.variant,
		},
	}
	b.Phase = PhaseConfirming
	b.Pending = p
	return p, nil
}

// Cancel moves Confirming -> Idle with no side effects.
func (b *BatchState) Cancel() error {
	if b.current() != PhaseConfirming {
		return ErrNoPendingBatch
	}
	b.Phase = PhaseIdle
	b.Pending = nil
	return nil
}

// Begin moves Confirming -> Applying and hands back the pending batch.
func (b *BatchState) Begin() (PendingBatch, error) {
	if b.current() != PhaseConfirming || b.Pending == nil {
		return PendingBatch{}, ErrNoPendingBatch
	}
	b.Phase = PhaseApplying
	return *b.Pending, nil
}

// Finish returns to Idle.
func (b *BatchState) Finish() {
	b.Phase = PhaseIdle
	b.Pending = nil
}

// BatchFailure records why one id could not be processed.
type BatchFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult is the settled outcome of a batch.
type BatchResult struct {
	Action    Action         `json:"action"`
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
	Summary   string         `json:"summary"`
	Notice    string         `json:"notice,omitempty"`
}

// DefaultBatchConcurrency bounds in-flight store calls per batch.
const DefaultBatchConcurrency = 4

// Dispatcher applies a confirmed batch against the store.
type Dispatcher struct {
	Store       repository.MovieStore
	Concurrency int
}

// Apply issues one store call per id.  Every id is attempted regardless
// of earlier failures; Succeeded and Failed keep the pending id order.
func (d Dispatcher) Apply(ctx context.Context, p PendingBatch) BatchResult {
	def := actionDefs[p.Action]
	limit := d.Concurrency
	if limit < 1 {
		limit = DefaultBatchConcurrency
	}

	errs := make([]error, len(p.IDs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range p.IDs {
		g.Go(func() error {
			errs[i] = d.applyOne(ctx, p.Action, def, id)
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{Action: p.Action, Succeeded: []string{}, Failed: []BatchFailure{}, Notice: def.notice}
	for i, id := range p.IDs {
		if errs[i] != nil {
			res.Failed = append(res.Failed, BatchFailure{ID: id, Reason: errs[i].Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	res.Summary = fmt.Sprintf("%d Movie(s) %s", len(res.Succeeded), def.done)
	if n := len(res.Failed); n > 0 {
		res.Summary += fmt.Sprintf(", %d failed", n)
	}
	return res
}

// applyOne settles a single id.  Deleting an id that is already gone
// counts as done; status actions need the movie to exist.
func (d Dispatcher) applyOne(ctx context.Context, action Action, def actionDef, id string) error {
	if action == ActionDelete {
		return d.Store.Remove(ctx, id)
	}
	m, err := d.Store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.Status = def.target
	_, err = d.Store.Update(ctx, *m)
	return err
}
