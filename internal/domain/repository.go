// Package domain provides the interfaces and generic services shared by the
// catalog packages.
package domain

import (
	"context"

	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// OwnerID scopes the list to one owner. Nil means unscoped (shared catalogs).
	OwnerID *id.ID

	// Search performs a case-insensitive match on name
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// ParentID narrows to children of one parent (doctors of a hospital)
	ParentID *id.ID

	// IncludeArchived includes soft-deleted records
	IncludeArchived bool

	// OnlyArchived lists the archive view only
	OnlyArchived bool

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// Record is the constraint for entities managed by CatalogService.
type Record interface {
	entity.Validatable
	GetID() id.ID
	BelongsTo(owner id.ID) bool
}

// CatalogRepository defines CRUD operations for catalog entities.
type CatalogRepository[T Record] interface {
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID regardless of owner; callers check ownership.
	GetByID(ctx context.Context, id id.ID) (T, error)

	Update(ctx context.Context, entity T) error

	// SetArchived sets or clears the archived flag.
	SetArchived(ctx context.Context, id id.ID, archived bool) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// OnAfterUpdate registers a hook to run after update.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) {
	r.On(AfterUpdate, hook)
}
