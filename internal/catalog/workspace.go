package catalog

import (
	"context"
	"fmt"

	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
)

// Defaults for a fresh workspace.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// State is everything one admin's workspace remembers between requests.
type State struct {
	Filter    FilterState `json:"filter"`
	Sort      SortState   `json:"sort"`
	Page      int         `json:"page"`
	PageSize  int         `json:"pageSize"`
	Selection Selection   `json:"selection"`
	Batch     BatchState  `json:"batch"`
}

// NewState returns the initial workspace state.
func NewState(pageSize int) State {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return State{
		Filter:   FilterState{Genre: All, Status: All, Year: All},
		Sort:     DefaultSort,
		Page:     1,
		PageSize: pageSize,
	}
}

// Options tune a Workspace.
type Options struct {
	MaxPageSize      int
	BatchConcurrency int
}

// PageView is one rendered page of the workspace.
type PageView struct {
	Items         []model.Movie `json:"items"`
	Page          int           `json:"page"`
	PageSize      int           `json:"pageSize"`
	TotalItems    int           `json:"totalItems"`
	TotalPages    int           `json:"totalPages"`
	Filter        FilterState   `json:"filter"`
	Sort          SortState     `json:"sort"`
	Selected      []string      `json:"selected"`
	SelectedCount int           `json:"selectedCount"`
	Phase         Phase         `json:"phase"`
	Pending       *PendingBatch `json:"pending,omitempty"`
}

// Workspace binds a State to the movie store.  It is not safe for
// concurrent use; callers serialise access per user.
type Workspace struct {
	store repository.MovieStore
	state *State
	opts  Options
}

// NewWorkspace wraps state.  Mutations are written through to *state.
func NewWorkspace(store repository.MovieStore, state *State, opts Options) *Workspace {
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = MaxPageSize
	}
	if state.PageSize < 1 {
		state.PageSize = DefaultPageSize
	}
	if state.Page < 1 {
		state.Page = 1
	}
	if state.Sort.Field == "" {
		state.Sort = DefaultSort
	}
	return &Workspace{store: store, state: state, opts: opts}
}

// State returns the current state.
func (w *Workspace) State() State { return *w.state }

// derive runs Source -> Filter -> Sort and clamps the page.
func (w *Workspace) derive(ctx context.Context) ([]model.Movie, error) {
	all, err := w.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	rows := Sort(Filter(all, w.state.Filter), w.state.Sort)
	w.state.Page = ClampPage(w.state.Page, TotalPages(len(rows), w.state.PageSize))
	return rows, nil
}

// View renders the current page.
func (w *Workspace) View(ctx context.Context) (PageView, error) {
	rows, err := w.derive(ctx)
	if err != nil {
		return PageView{}, err
	}
	st := w.state
	return PageView{
		Items:         Paginate(rows, st.Page, st.PageSize),
		Page:          st.Page,
		PageSize:      st.PageSize,
		TotalItems:    len(rows),
		TotalPages:    TotalPages(len(rows), st.PageSize),
		Filter:        st.Filter,
		Sort:          st.Sort,
		Selected:      st.Selection.IDs(),
		SelectedCount: st.Selection.Len(),
		Phase:         st.Batch.current(),
		Pending:       st.Batch.Pending,
	}, nil
}

// FilteredIDs returns the ids of every movie passing the current filter,
// in the current sort order.
func (w *Workspace) FilteredIDs(ctx context.Context) ([]string, error) {
	rows, err := w.derive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, m := range rows {
		ids[i] = m.ID
	}
	return ids, nil
}

// SetSearch changes the title search and returns to page 1.
func (w *Workspace) SetSearch(q string) {
	w.state.Filter.Search = q
	w.state.Page = 1
}

// SetFilters replaces every filter constraint and returns to page 1.
func (w *Workspace) SetFilters(f FilterState) error {
	nf, err := f.Normalize()
	if err != nil {
		return err
	}
	w.state.Filter = nf
	w.state.Page = 1
	return nil
}

// ToggleSort applies the header-click rule for field and returns to page 1.
func (w *Workspace) ToggleSort(field string) error {
	f, err := ParseSortField(field)
	if err != nil {
		return err
	}
	w.state.Sort = w.state.Sort.Toggle(f)
	w.state.Page = 1
	return nil
}

// SetSort sets field and direction explicitly.
func (w *Workspace) SetSort(field, dir string) error {
	f, err := ParseSortField(field)
	if err != nil {
		return err
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return err
	}
	w.state.Sort = SortState{Field: f, Direction: d}
	w.state.Page = 1
	return nil
}

// SetPage moves to page.  Pages past the end are clamped on the next
// View.
func (w *Workspace) SetPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	w.state.Page = page
	return nil
}

// SetPageSize changes the page size and returns to page 1.
func (w *Workspace) SetPageSize(size int) error {
	if size < 1 || size > w.opts.MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidPage, w.opts.MaxPageSize)
	}
	if size != w.state.PageSize {
		w.state.PageSize = size
		w.state.Page = 1
	}
	return nil
}

// Select toggles one id.
func (w *Workspace) Select(id string, checked bool) {
	w.state.Selection.Toggle(id, checked)
}

// SelectPage checks or unchecks every id on the current page.
func (w *Workspace) SelectPage(ctx context.Context, checked bool) error {
	rows, err := w.derive(ctx)
	if err != nil {
		return err
	}
	page := Paginate(rows, w.state.Page, w.state.PageSize)
	ids := make([]string, len(page))
	for i, m := range page {
		ids[i] = m.ID
	}
	w.state.Selection.SelectAll(ids, checked)
	return nil
}

// ClearSelection empties the selection.
func (w *Workspace) ClearSelection() { w.state.Selection.Clear() }

// PrepareBatch captures action over the current selection for confirmation.
func (w *Workspace) PrepareBatch(action string) (*PendingBatch, error) {
	a, err := ParseAction(action)
	if err != nil {
		return nil, err
	}
	return w.state.Batch.Prepare(a, w.state.Selection.IDs())
}

// CancelBatch drops the pending action.
func (w *Workspace) CancelBatch() error { return w.state.Batch.Cancel() }

// ConfirmBatch runs the pending action.  The selection is cleared and the
// machine is back to idle afterwards whatever the per-item outcome.
func (w *Workspace) ConfirmBatch(ctx context.Context) (BatchResult, error) {
	p, err := w.state.Batch.Begin()
	if err != nil {
		return BatchResult{}, err
	}
	d := Dispatcher{Store: w.store, Concurrency: w.opts.BatchConcurrency}
	res := d.Apply(ctx, p)
	w.state.Batch.Finish()
	w.state.Selection.Clear()
	if _, err := w.derive(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// DeleteOne removes a single movie and deselects it.
func (w *Workspace) DeleteOne(ctx context.Context, id string) (*model.Movie, error) {
	m, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.store.Remove(ctx, id); err != nil {
		return nil, err
	}
	w.state.Selection.Toggle(id, false)
	return m, nil
}

// ReplaceStreamingLinks overwrites the movie's streaming links.
func (w *Workspace) ReplaceStreamingLinks(ctx context.Context, id string, links []model.StreamingLink) (*model.Movie, error) {
	return w.edit(ctx, id, func(m *model.Movie) {
		m.StreamingLinks = append([]model.StreamingLink{}, links...)
	})
}

// ReplaceReleaseDates overwrites the movie's regional release dates.
func (w *Workspace) ReplaceReleaseDates(ctx context.Context, id string, dates []model.ReleaseDateInfo) (*model.Movie, error) {
	return w.edit(ctx, id, func(m *model.Movie) {
		m.ReleaseDates = append([]model.ReleaseDateInfo{}, dates...)
	})
}

func (w *Workspace) edit(ctx context.Context, id string, fn func(*model.Movie)) (*model.Movie, error) {
	m, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(m)
	return w.store.Update(ctx, *m)
}
