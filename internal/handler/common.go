package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/config"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/middleware"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
	"github.com/iliyamo/siddu-catalog/internal/service"
	"github.com/iliyamo/siddu-catalog/internal/session"
	"github.com/iliyamo/siddu-catalog/internal/transfer"
)

const opTimeout = config.OperationTimeout

func apiError(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// writeError maps domain errors onto HTTP responses.  Validation problems
// are 400, unknown ids 404, state conflicts 409 and everything else is
// an operation failure the client may retry.
func writeError(c echo.Context, err error) error {
	var verr *transfer.ValidationError
	switch {
	case errors.As(err, &verr):
		body := echo.Map{"error": "validation", "message": verr.Message}
		if verr.Index >= 0 {
			body["index"] = verr.Index
		}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		if len(verr.Found) > 0 {
			body["found"] = verr.Found
		}
		return c.JSON(http.StatusBadRequest, body)
	case catalog.IsValidation(err):
		return apiError(c, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, repository.ErrMovieNotFound):
		return apiError(c, http.StatusNotFound, "not_found", "movie not found")
	case errors.Is(err, repository.ErrForbidden):
		return apiError(c, http.StatusForbidden, "forbidden", "role not allowed")
	case errors.Is(err, session.ErrBusy):
		return apiError(c, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, catalog.ErrBatchInProgress), errors.Is(err, catalog.ErrNoPendingBatch),
		errors.Is(err, repository.ErrConflict):
		return apiError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Str("correlation_id", middleware.RequestID(c)).Msg("operation timed out")
		return apiError(c, http.StatusServiceUnavailable, "unavailable", "the catalog did not respond in time, try again")
	}
	log.Error().Err(err).Str("correlation_id", middleware.RequestID(c)).Str("path", c.Path()).Msg("operation failed")
	return apiError(c, http.StatusInternalServerError, "internal", "operation failed, try again")
}

// CatalogHandler serves the admin catalog: movie CRUD, the per-user
// workspace, batch actions, import and export.
type CatalogHandler struct {
	Movies   repository.MovieStore
	Sessions session.Store
	Events   service.Publisher
	Opts     catalog.Options
	Now      func() time.Time
}

func NewCatalogHandler(movies repository.MovieStore, sessions session.Store, pub service.Publisher, opts catalog.Options) *CatalogHandler {
	if pub == nil {
		pub = service.NopPublisher{}
	}
	return &CatalogHandler{
		Movies:   movies,
		Sessions: sessions,
		Events:   pub,
		Opts:     opts,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type workspaceFunc func(ctx context.Context, ws *catalog.Workspace) (any, error)

// withWorkspace runs fn against the caller's workspace and answers with
// its result.
func (h *CatalogHandler) withWorkspace(c echo.Context, status int, fn workspaceFunc) error {
	var out any
	err := h.runWorkspace(c, func(ctx context.Context, ws *catalog.Workspace) error {
		var err error
		out, err = fn(ctx, ws)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(status, out)
}

// runWorkspace holds the per-user guard while fn runs and persists the
// resulting state whatever fn returns.
func (h *CatalogHandler) runWorkspace(c echo.Context, fn func(ctx context.Context, ws *catalog.Workspace) error) error {
	user := middleware.UserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	release, err := h.Sessions.Acquire(ctx, user)
	if err != nil {
		return err
	}
	defer release()

	st, err := h.Sessions.Load(ctx, user)
	if err != nil {
		return err
	}
	ws := catalog.NewWorkspace(h.Movies, &st, h.Opts)
	opErr := fn(ctx, ws)
	if err := h.Sessions.Save(context.WithoutCancel(ctx), user, ws.State()); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("save workspace failed")
		if opErr == nil {
			opErr = err
		}
	}
	return opErr
}

// publish sends a catalog event stamped with the calling user.
func (h *CatalogHandler) publish(c echo.Context, typ string, fill func(*events.CatalogEvent)) {
	ev := events.New(typ, middleware.UserID(c))
	if fill != nil {
		fill(&ev)
	}
	service.Emit(c.Request().Context(), h.Events, ev)
}

func isAdmin(c echo.Context) bool { return middleware.Role(c) == model.RoleAdmin }

func queryBool(c echo.Context, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func queryInt(c echo.Context, key string) (int, bool, error) {
	s := strings.TrimSpace(c.QueryParam(key))
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s must be a number", catalog.ErrInvalidPage, key)
	}
	return n, true, nil
}
