// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Archive(c *gin.Context)
	Restore(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Extra middleware guards archive and restore only.
//
// Usage:
//
//	repo := catalog_repo.NewPharmacyRepo(cfg.TxManager)
//	service := pharmacy.NewService(repo, cfg.TxManager)
//	handler := handlers.NewPharmacyHandler(baseHandler, service)
//	RegisterCatalogRoutes(protected.Group("/pharmacies"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, archiveGuards ...gin.HandlerFunc) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", append(archiveGuards, handler.Archive)...)
	group.POST("/:id/restore", append(archiveGuards, handler.Restore)...)
}
