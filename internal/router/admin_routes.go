package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siddu-catalog/internal/handler"
	"github.com/iliyamo/siddu-catalog/internal/middleware"
	"github.com/iliyamo/siddu-catalog/internal/model"
)

// RegisterAdmin registers the catalog admin API under /v1/admin.  Every
// route needs ADMIN or EDITOR; deletes and imports need ADMIN.  Batch
// delete is checked by the handler because the action travels in the body.
func RegisterAdmin(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleEditor))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	g.GET("/movies", h.ListMovies)
	g.POST("/movies", h.CreateMovie)
	g.GET("/movies/:id", h.GetMovie)
	g.PUT("/movies/:id", h.ReplaceMovie)
	g.PATCH("/movies/:id", h.PatchMovie)
	g.DELETE("/movies/:id", h.DeleteMovie, adminOnly)
	g.PUT("/movies/:id/streaming-links", h.ReplaceStreamingLinks)
	g.PUT("/movies/:id/release-dates", h.ReplaceReleaseDates)

	g.PUT("/workspace/filters", h.SetFilters)
	g.POST("/workspace/sort", h.SetSort)
	g.PUT("/workspace/page", h.SetPage)
	g.POST("/workspace/selection", h.ToggleSelection)
	g.POST("/workspace/selection/page", h.SelectPage)
	g.DELETE("/workspace/selection", h.ClearSelection)

	g.POST("/batch", h.PrepareBatch)
	g.POST("/batch/confirm", h.ConfirmBatch)
	g.DELETE("/batch", h.CancelBatch)

	g.POST("/import/json", h.ImportJSON, adminOnly)
	g.POST("/import/api", h.ImportFromAPI, adminOnly)
	g.GET("/import/template", h.ImportTemplate)
	g.GET("/export", h.Export)
}
