package domain

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/pkg/logger"
)

// CatalogService provides owner-scoped CRUD for catalog entities.
// Shared catalogs (companies) skip the owner check.
type CatalogService[T Record] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages and logs
	entityName string
	shared     bool
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Record] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
	// Shared marks catalogs that are visible to every owner.
	Shared bool
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T Record](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
		shared:     cfg.Shared,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

// Create creates a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	logger.Info(ctx, "catalog entry created", "entity", s.entityName, "id", entity.GetID())
	return nil
}

// Get retrieves an entity visible to owner.
func (s *CatalogService[T]) Get(ctx context.Context, owner, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID)
	}
	if !s.shared && !entity.BelongsTo(owner) {
		var zero T
		return zero, apperror.NewNotFound(s.entityName, entityID.String())
	}
	return entity, nil
}

// Update persists a modified entity. The entity must be owned by owner.
func (s *CatalogService[T]) Update(ctx context.Context, owner id.ID, entity T) error {
	if !s.shared && !entity.BelongsTo(owner) {
		return apperror.NewNotFound(s.entityName, entity.GetID().String())
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, entity); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// Archive soft-deletes an entity.
func (s *CatalogService[T]) Archive(ctx context.Context, owner, entityID id.ID) error {
	return s.setArchived(ctx, owner, entityID, true)
}

// Restore clears the archived flag.
func (s *CatalogService[T]) Restore(ctx context.Context, owner, entityID id.ID) error {
	return s.setArchived(ctx, owner, entityID, false)
}

func (s *CatalogService[T]) setArchived(ctx context.Context, owner, entityID id.ID, archived bool) error {
	if _, err := s.Get(ctx, owner, entityID); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetArchived(ctx, entityID, archived); err != nil {
			return fmt.Errorf("archive %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "catalog entry archive flag changed", "entity", s.entityName, "id", entityID, "archived", archived)
	return nil
}

// List retrieves entities visible to owner.
func (s *CatalogService[T]) List(ctx context.Context, owner id.ID, filter ListFilter) (ListResult[T], error) {
	if !s.shared {
		filter.OwnerID = &owner
	}
	return s.repo.List(ctx, filter)
}
