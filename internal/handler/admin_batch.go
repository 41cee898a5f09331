package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/repository"
)

type batchReq struct {
	Action string `json:"action"`
}

// PrepareBatch stages an action over the current selection and returns
// the confirmation prompt.  Delete needs the ADMIN role.
func (h *CatalogHandler) PrepareBatch(c echo.Context) error {
	var req batchReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		a, err := catalog.ParseAction(req.Action)
		if err != nil {
			return nil, err
		}
		if a.Destructive() && !isAdmin(c) {
			return nil, repository.ErrForbidden
		}
		return ws.PrepareBatch(string(a))
	})
}

// ConfirmBatch applies the pending action and reports per-item results.
func (h *CatalogHandler) ConfirmBatch(c echo.Context) error {
	var res *catalog.BatchResult
	err := h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		if p := ws.State().Batch.Pending; p != nil && p.Action.Destructive() && !isAdmin(c) {
			return nil, repository.ErrForbidden
		}
		r, err := ws.ConfirmBatch(ctx)
		if r.Action != "" {
			res = &r
		}
		if err != nil {
			return nil, err
		}
		page, err := ws.View(ctx)
		if err != nil {
			return nil, err
		}
		return echo.Map{"result": r, "view": page}, nil
	})
	if res != nil {
		h.publish(c, events.BatchApplied, func(ev *events.CatalogEvent) {
			ev.Action = string(res.Action)
			ev.MovieIDs = res.Succeeded
			ev.Succeeded = len(res.Succeeded)
			ev.Failed = len(res.Failed)
			ev.Summary = res.Summary
		})
	}
	return err
}

// CancelBatch drops the pending action.
func (h *CatalogHandler) CancelBatch(c echo.Context) error {
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		if err := ws.CancelBatch(); err != nil {
			return nil, err
		}
		return ws.View(ctx)
	})
}
