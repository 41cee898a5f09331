package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
)

// SetFilters replaces the search and filter constraints.
func (h *CatalogHandler) SetFilters(c echo.Context) error {
	var req catalog.FilterState
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		if err := ws.SetFilters(req); err != nil {
			return nil, err
		}
		return ws.View(ctx)
	})
}

type sortReq struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// SetSort applies a column-header click.  Without a direction the usual
// toggle applies: same field flips, a new field starts ascending.
func (h *CatalogHandler) SetSort(c echo.Context) error {
	var req sortReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		var err error
		if req.Direction == "" {
			err = ws.ToggleSort(req.Field)
		} else {
			err = ws.SetSort(req.Field, req.Direction)
		}
		if err != nil {
			return nil, err
		}
		return ws.View(ctx)
	})
}

type pageReq struct {
	Page     *int `json:"page"`
	PageSize *int `json:"pageSize"`
}

// SetPage moves to a page and optionally changes the page size.
func (h *CatalogHandler) SetPage(c echo.Context) error {
	var req pageReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		if req.PageSize != nil {
			if err := ws.SetPageSize(*req.PageSize); err != nil {
				return nil, err
			}
		}
		if req.Page != nil {
			if err := ws.SetPage(*req.Page); err != nil {
				return nil, err
			}
		}
		return ws.View(ctx)
	})
}

type selectReq struct {
	ID      string `json:"id"`
	Checked bool   `json:"checked"`
}

// ToggleSelection checks or unchecks one movie.
func (h *CatalogHandler) ToggleSelection(c echo.Context) error {
	var req selectReq
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return apiError(c, http.StatusBadRequest, "validation", "id is required")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		ws.Select(req.ID, req.Checked)
		return ws.View(ctx)
	})
}

// SelectPage checks or unchecks every movie on the current page.
func (h *CatalogHandler) SelectPage(c echo.Context) error {
	var req selectReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		if err := ws.SelectPage(ctx, req.Checked); err != nil {
			return nil, err
		}
		return ws.View(ctx)
	})
}

// ClearSelection empties the selection.
func (h *CatalogHandler) ClearSelection(c echo.Context) error {
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		ws.ClearSelection()
		return ws.View(ctx)
	})
}
