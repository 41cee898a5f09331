package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
)

// PublicHandler exposes the published part of the catalog to guests.
type PublicHandler struct {
	Movies      repository.MovieStore
	MaxPageSize int
}

func NewPublicHandler(movies repository.MovieStore, maxPageSize int) *PublicHandler {
	if maxPageSize < 1 {
		maxPageSize = catalog.MaxPageSize
	}
	return &PublicHandler{Movies: movies, MaxPageSize: maxPageSize}
}

type publicPage struct {
	Items      []model.Movie `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

// ListMovies runs the same filter, sort and paginate pipeline as the admin
// workspace over released movies only.  Nothing is remembered between
// requests.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	f, err := catalog.FilterState{
		Search: c.QueryParam("q"),
		Genre:  c.QueryParam("genre"),
		Year:   c.QueryParam("year"),
		Status: string(model.StatusReleased),
	}.Normalize()
	if err != nil {
		return writeError(c, err)
	}
	sortState := catalog.DefaultSort
	if field := c.QueryParam("sort"); field != "" {
		if sortState.Field, err = catalog.ParseSortField(field); err != nil {
			return writeError(c, err)
		}
		sortState.Direction = catalog.Asc
	}
	if dir := c.QueryParam("dir"); dir != "" {
		if sortState.Direction, err = catalog.ParseDirection(dir); err != nil {
			return writeError(c, err)
		}
	}
	size := catalog.DefaultPageSize
	if n, ok, err := queryInt(c, "page_size"); err != nil {
		return writeError(c, err)
	} else if ok {
		if n < 1 || n > h.MaxPageSize {
			return apiError(c, http.StatusBadRequest, "validation", "page_size out of range")
		}
		size = n
	}
	page := 1
	if n, ok, err := queryInt(c, "page"); err != nil {
		return writeError(c, err)
	} else if ok {
		if n < 1 {
			return apiError(c, http.StatusBadRequest, "validation", "page must be at least 1")
		}
		page = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	all, err := h.Movies.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	rows := catalog.Sort(catalog.Filter(all, f), sortState)
	total := catalog.TotalPages(len(rows), size)
	page = catalog.ClampPage(page, total)
	return c.JSON(http.StatusOK, publicPage{
		Items:      catalog.Paginate(rows, page, size),
		Page:       page,
		PageSize:   size,
		TotalItems: len(rows),
		TotalPages: total,
	})
}

// GetMovie returns a released movie; anything else is 404.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	m, err := h.Movies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !m.IsPublished() {
		return writeError(c, repository.ErrMovieNotFound)
	}
	return c.JSON(http.StatusOK, m)
}
