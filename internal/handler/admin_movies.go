package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
	"github.com/iliyamo/siddu-catalog/internal/transfer"
)

func fieldError(field, format string, args ...any) error {
	return &transfer.ValidationError{Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}

// validateMovie checks an edited record and canonicalises its enums.
func validateMovie(m *model.Movie) error {
	if verr := transfer.CheckMovie(m); verr != nil {
		return verr
	}
	return nil
}

// ListMovies renders the caller's workspace page.  Query parameters q,
// genre, status, year, sort, dir, page_size and page update the workspace
// before rendering; absent parameters leave it untouched.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	return h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		qp := c.QueryParams()
		if qp.Has("genre") || qp.Has("status") || qp.Has("year") || qp.Has("q") {
			f := ws.State().Filter
			if qp.Has("q") {
				f.Search = c.QueryParam("q")
			}
			if qp.Has("genre") {
				f.Genre = c.QueryParam("genre")
			}
			if qp.Has("status") {
				f.Status = c.QueryParam("status")
			}
			if qp.Has("year") {
				f.Year = c.QueryParam("year")
			}
			if err := ws.SetFilters(f); err != nil {
				return nil, err
			}
		}
		if field := c.QueryParam("sort"); field != "" {
			dir := c.QueryParam("dir")
			if dir == "" {
				dir = string(catalog.Asc)
			}
			if err := ws.SetSort(field, dir); err != nil {
				return nil, err
			}
		}
		if n, ok, err := queryInt(c, "page_size"); err != nil {
			return nil, err
		} else if ok {
			if err := ws.SetPageSize(n); err != nil {
				return nil, err
			}
		}
		if n, ok, err := queryInt(c, "page"); err != nil {
			return nil, err
		} else if ok {
			if err := ws.SetPage(n); err != nil {
				return nil, err
			}
		}
		return ws.View(ctx)
	})
}

// CreateMovie adds one manually entered movie.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var draft model.Movie
	if err := c.Bind(&draft); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	if err := validateMovie(&draft); err != nil {
		return writeError(c, err)
	}
	draft.ID = ""
	if draft.ImportedFrom == "" {
		draft.ImportedFrom = transfer.SourceManual
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()
	m, err := h.Movies.Add(ctx, draft)
	if err != nil {
		return writeError(c, err)
	}
	h.publish(c, events.MovieCreated, func(ev *events.CatalogEvent) {
		ev.MovieIDs = []string{m.ID}
		ev.Title = m.Title
	})
	return c.JSON(http.StatusCreated, m)
}

// GetMovie returns any movie regardless of status.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()
	m, err := h.Movies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ReplaceMovie overwrites a movie with the request body (PUT).
func (h *CatalogHandler) ReplaceMovie(c echo.Context) error {
	var m model.Movie
	if err := c.Bind(&m); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.saveMovie(c, c.Param("id"), func(cur *model.Movie) (*model.Movie, error) {
		m.ImportedFrom = firstNonEmpty(m.ImportedFrom, cur.ImportedFrom)
		return &m, nil
	})
}

// PatchMovie merges the JSON body into the stored movie (PATCH).
func (h *CatalogHandler) PatchMovie(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 4<<20))
	if err != nil || !json.Valid(body) {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	return h.saveMovie(c, c.Param("id"), func(cur *model.Movie) (*model.Movie, error) {
		next := cur.Clone()
		if err := json.Unmarshal(body, &next); err != nil {
			return nil, fieldError("", "invalid body: %v", err)
		}
		return &next, nil
	})
}

func (h *CatalogHandler) saveMovie(c echo.Context, id string, build func(cur *model.Movie) (*model.Movie, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	cur, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	next, err := build(cur)
	if err != nil {
		return writeError(c, err)
	}
	next.ID = id
	if err := validateMovie(next); err != nil {
		return writeError(c, err)
	}
	repository.ApplyDefaults(next, h.Now())

	saved, err := h.Movies.Update(ctx, *next)
	if err != nil {
		return writeError(c, err)
	}
	h.publish(c, events.MovieUpdated, func(ev *events.CatalogEvent) {
		ev.MovieIDs = []string{saved.ID}
		ev.Title = saved.Title
	})
	return c.JSON(http.StatusOK, saved)
}

// DeleteMovie permanently removes one movie and drops it from the
// caller's selection.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
	id := c.Param("id")
	var deleted *model.Movie
	err := h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		m, err := ws.DeleteOne(ctx, id)
		if err != nil {
			return nil, err
		}
		deleted = m
		return echo.Map{"id": m.ID, "message": fmt.Sprintf("%q Deleted", m.Title)}, nil
	})
	if deleted != nil {
		h.publish(c, events.MovieDeleted, func(ev *events.CatalogEvent) {
			ev.MovieIDs = []string{deleted.ID}
			ev.Title = deleted.Title
		})
	}
	return err
}

type streamingLinksReq struct {
	Links []model.StreamingLink `json:"links"`
}

// ReplaceStreamingLinks overwrites the streaming links of a movie.
func (h *CatalogHandler) ReplaceStreamingLinks(c echo.Context) error {
	var req streamingLinksReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	for i, l := range req.Links {
		if strings.TrimSpace(l.Provider) == "" || strings.TrimSpace(l.URL) == "" {
			return writeError(c, fieldError("links", "link %d needs provider and url", i))
		}
	}
	return h.editRelations(c, "Streaming Links Updated", "Links for %q saved.",
		func(ctx context.Context, ws *catalog.Workspace, id string) (*model.Movie, error) {
			return ws.ReplaceStreamingLinks(ctx, id, req.Links)
		})
}

type releaseDatesReq struct {
	ReleaseDates []model.ReleaseDateInfo `json:"releaseDates"`
}

// ReplaceReleaseDates overwrites the regional release dates of a movie.
func (h *CatalogHandler) ReplaceReleaseDates(c echo.Context) error {
	var req releaseDatesReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	for i, d := range req.ReleaseDates {
		if strings.TrimSpace(d.Region) == "" {
			return writeError(c, fieldError("releaseDates", "release date %d needs a region", i))
		}
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			return writeError(c, fieldError("releaseDates", "release date %d must be YYYY-MM-DD", i))
		}
	}
	return h.editRelations(c, "Release Dates Updated", "Dates for %q saved.",
		func(ctx context.Context, ws *catalog.Workspace, id string) (*model.Movie, error) {
			return ws.ReplaceReleaseDates(ctx, id, req.ReleaseDates)
		})
}

func (h *CatalogHandler) editRelations(c echo.Context, title, desc string,
	fn func(ctx context.Context, ws *catalog.Workspace, id string) (*model.Movie, error)) error {
	var saved *model.Movie
	err := h.withWorkspace(c, http.StatusOK, func(ctx context.Context, ws *catalog.Workspace) (any, error) {
		m, err := fn(ctx, ws, c.Param("id"))
		if err != nil {
			return nil, err
		}
		saved = m
		return echo.Map{"movie": m, "title": title, "message": fmt.Sprintf(desc, m.Title)}, nil
	})
	if saved != nil {
		h.publish(c, events.MovieUpdated, func(ev *events.CatalogEvent) {
			ev.MovieIDs = []string{saved.ID}
			ev.Title = saved.Title
		})
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
