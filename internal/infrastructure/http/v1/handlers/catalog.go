// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// CatalogService is the slice of domain.CatalogService the generic handler
// drives.
type CatalogService[T domain.Record] interface {
	Create(ctx context.Context, entity T) error
	Get(ctx context.Context, owner, entityID id.ID) (T, error)
	Update(ctx context.Context, owner id.ID, entity T) error
	Archive(ctx context.Context, owner, entityID id.ID) error
	Restore(ctx context.Context, owner, entityID id.ID) error
	List(ctx context.Context, owner id.ID, filter domain.ListFilter) (domain.ListResult[T], error)
}

// CatalogHandler provides generic HTTP handlers for owner-scoped catalogs.
type CatalogHandler[T domain.Record, Req any] struct {
	*BaseHandler
	service    CatalogService[T]
	entityName string

	newEntity func(req Req, owner id.ID) (T, error)
	apply     func(req Req, existing T) error
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T domain.Record, Req any] struct {
	Service    CatalogService[T]
	EntityName string
	// NewEntity builds an entity for the caller from a create request.
	NewEntity func(req Req, owner id.ID) (T, error)
	// Apply copies an update request onto the stored entity.
	Apply func(req Req, existing T) error
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.Record, Req any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, Req],
) *CatalogHandler[T, Req] {
	return &CatalogHandler[T, Req]{
		BaseHandler: base,
		service:     cfg.Service,
		entityName:  cfg.EntityName,
		newEntity:   cfg.NewEntity,
		apply:       cfg.Apply,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, Req]) List(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), owner, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, Req]) Get(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), owner, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, Req]) Create(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.newEntity(req, owner)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, Req]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.Get(ctx, owner, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.apply(req, existing); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, owner, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// Archive handles DELETE /{entity}/:id - soft delete entity.
func (h *CatalogHandler[T, Req]) Archive(c *gin.Context) {
	h.setArchived(c, true)
}

// Restore handles POST /{entity}/:id/restore.
func (h *CatalogHandler[T, Req]) Restore(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *CatalogHandler[T, Req]) setArchived(c *gin.Context, archived bool) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var err error
	if archived {
		err = h.service.Archive(c.Request.Context(), owner, entityID)
	} else {
		err = h.service.Restore(c.Request.Context(), owner, entityID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	if archived {
		h.NoContent(c)
		return
	}
	h.Success(c, h.entityName+" restored")
}
