package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/transfer"
)

const maxImportBytes = 8 << 20

type importResp struct {
	Count   int           `json:"count"`
	Movies  []model.Movie `json:"movies"`
	Message string        `json:"message"`
}

// ImportJSON adds every movie of a `{"movies": [...]}` payload as drafts,
// or none of them when any item is invalid.
func (h *CatalogHandler) ImportJSON(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportBytes))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "unreadable body")
	}
	drafts, err := transfer.ParseImport(raw)
	if err != nil {
		return writeError(c, err)
	}
	return h.importDrafts(c, transfer.SourceJSON, drafts, fmt.Sprintf("Successfully imported %d movies!", len(drafts)))
}

type apiImportReq struct {
	Movies []transfer.APIItem `json:"movies"`
}

// ImportFromAPI adds drafts for movies picked from TMDB or OMDB search
// results.
func (h *CatalogHandler) ImportFromAPI(c echo.Context) error {
	var req apiImportReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	drafts, err := transfer.DraftsFromAPI(req.Movies, h.Now())
	if err != nil {
		return writeError(c, err)
	}
	msg := fmt.Sprintf("%d of %d movies imported.", len(drafts), len(req.Movies))
	return h.importDrafts(c, transfer.ImportSource(drafts), drafts, msg)
}

func (h *CatalogHandler) importDrafts(c echo.Context, source string, drafts []model.Movie, msg string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()
	added, err := h.Movies.AddAll(ctx, drafts)
	if err != nil {
		return writeError(c, err)
	}
	ids := make([]string, len(added))
	for i, m := range added {
		ids[i] = m.ID
	}
	h.publish(c, events.ImportCompleted, func(ev *events.CatalogEvent) {
		ev.Source = source
		ev.MovieIDs = ids
		ev.Succeeded = len(added)
	})
	return c.JSON(http.StatusCreated, importResp{Count: len(added), Movies: added, Message: msg})
}

// ImportTemplate downloads a sample payload accepted by ImportJSON.
func (h *CatalogHandler) ImportTemplate(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", transfer.TemplateFileName))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, transfer.SampleTemplate())
}

// Export downloads movies as JSON.  scope picks all movies, the ones
// passing the workspace filter (in workspace order) or the selected ones;
// metadata, relations and pretty toggle the export options.
func (h *CatalogHandler) Export(c echo.Context) error {
	scope, err := transfer.ParseScope(c.QueryParam("scope"))
	if err != nil {
		return writeError(c, err)
	}
	def := transfer.DefaultExportOptions()
	opts := transfer.ExportOptions{
		Scope:            scope,
		IncludeMetadata:  queryBool(c, "metadata", def.IncludeMetadata),
		IncludeRelations: queryBool(c, "relations", def.IncludeRelations),
		Pretty:           queryBool(c, "pretty", def.Pretty),
	}

	var doc []byte
	err = h.runWorkspace(c, func(ctx context.Context, ws *catalog.Workspace) error {
		movies, err := h.resolveScope(ctx, ws, scope)
		if err != nil {
			return err
		}
		doc, err = transfer.Export(movies, opts, h.Now())
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", transfer.FileName(h.Now())))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, doc)
}

func (h *CatalogHandler) resolveScope(ctx context.Context, ws *catalog.Workspace, scope transfer.Scope) ([]model.Movie, error) {
	all, err := h.Movies.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	switch scope {
	case transfer.ScopeAll:
		return all, nil
	case transfer.ScopeFiltered:
		if ids, err = ws.FilteredIDs(ctx); err != nil {
			return nil, err
		}
	case transfer.ScopeSelected:
		ids = ws.State().Selection.IDs()
		if len(ids) == 0 {
			return nil, catalog.ErrEmptySelection
		}
	}
	byID := make(map[string]model.Movie, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}
	out := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}
