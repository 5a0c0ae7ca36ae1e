// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

// immutableColumns are never written by Update.
var immutableColumns = []string{"id", "created_at", "owner_id", "archived"}

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txm          *postgres.TxManager
	tableName    string
	entityName   string
	selectCols   []string
	updateCols   []string
	parentColumn string
	searchColumn string
	orderColumns []string
	newFn        func() T
}

// NewBaseCatalogRepo creates a new base catalog repository. Columns are
// taken from the "db" tags of the entity type. excludeFromUpdate names
// ledger columns that only dedicated methods may write.
func NewBaseCatalogRepo[T any](
	txm *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
	excludeFromUpdate ...string,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txm:          txm,
		tableName:    tableName,
		entityName:   entityName,
		selectCols:   selectCols,
		updateCols:   postgres.Without(selectCols, append(excludeFromUpdate, immutableColumns...)...),
		searchColumn: "name",
		newFn:        newFn,
	}
}

// WithParentColumn sets the column ListFilter.ParentID narrows on.
func (r *BaseCatalogRepo[T]) WithParentColumn(col string) *BaseCatalogRepo[T] {
	r.parentColumn = col
	return r
}

// WithSearchColumn sets the column ListFilter.Search matches (default "name").
func (r *BaseCatalogRepo[T]) WithSearchColumn(col string) *BaseCatalogRepo[T] {
	r.searchColumn = col
	return r
}

// WithOrderColumns restricts orderBy to the given columns. Without it any
// selected column is accepted.
func (r *BaseCatalogRepo[T]) WithOrderColumns(cols ...string) *BaseCatalogRepo[T] {
	r.orderColumns = cols
	return r
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Querier returns the context's transaction or the pool.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.querier(ctx)
}

// Columns lists the selected columns.
func (r *BaseCatalogRepo[T]) Columns() []string {
	return r.selectCols
}

func (r *BaseCatalogRepo[T]) hasColumn(col string) bool {
	for _, c := range r.selectCols {
		if c == col {
			return true
		}
	}
	return false
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.Pick(postgres.StructToMap(entity), r.selectCols)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entityName)
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	key := fmt.Sprint(data["id"])
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert", r.entityName, key)
	}
	return nil
}

// Update writes every editable column of the entity.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("%s has no 'id' field with db tag", r.entityName)
	}
	return r.updateColumns(ctx, entityID, postgres.Pick(data, r.updateCols))
}

// UpdateColumns writes the named columns of the entity. Ledger repositories
// use it for their narrow Save* methods.
func (r *BaseCatalogRepo[T]) UpdateColumns(ctx context.Context, entity T, cols ...string) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("%s has no 'id' field with db tag", r.entityName)
	}
	if r.hasColumn("updated_at") {
		cols = append(cols, "updated_at")
	}
	return r.updateColumns(ctx, entityID, postgres.Pick(data, cols))
}

func (r *BaseCatalogRepo[T]) updateColumns(ctx context.Context, entityID any, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(values).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	key := fmt.Sprint(entityID)
	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update", r.entityName, key)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, key)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// GetByID retrieves entity by ID regardless of owner.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// GetForUpdate retrieves entity by ID with row lock.
func (r *BaseCatalogRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		return entity, postgres.MapError(err, "get", r.entityName, key)
	}
	return entity, nil
}

// FindMany executes a SELECT query and returns every matching entity.
func (r *BaseCatalogRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.entityName, err)
	}
	return items, nil
}

// SetArchived sets or clears the archived flag.
func (r *BaseCatalogRepo[T]) SetArchived(ctx context.Context, entityID id.ID, archived bool) error {
	q := r.Builder().
		Update(r.tableName).
		Set("archived", archived).
		Where(squirrel.Eq{"id": entityID})
	if r.hasColumn("updated_at") {
		q = q.Set("updated_at", time.Now().UTC())
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set archived: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "archive", r.entityName, entityID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// Delete performs physical removal.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "delete", r.entityName, entityID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// applyFilter adds the common ListFilter conditions.
func (r *BaseCatalogRepo[T]) applyFilter(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if filter.OwnerID != nil {
		q = q.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}

	if r.hasColumn("archived") {
		switch {
		case filter.OnlyArchived:
			q = q.Where(squirrel.Eq{"archived": true})
		case !filter.IncludeArchived:
			q = q.Where(squirrel.Eq{"archived": false})
		}
	}

	if filter.Search != "" && r.hasColumn(r.searchColumn) {
		q = q.Where(squirrel.ILike{r.searchColumn: "%" + filter.Search + "%"})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	if filter.ParentID != nil && r.parentColumn != "" {
		q = q.Where(squirrel.Eq{r.parentColumn: *filter.ParentID})
	}

	return q
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	return r.ListWhere(ctx, filter, nil)
}

// ListWhere is List with extra conditions.
func (r *BaseCatalogRepo[T]) ListWhere(ctx context.Context, filter domain.ListFilter, extra squirrel.Sqlizer) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.applyFilter(r.baseSelect(), filter)
	if extra != nil && !isEmptyAnd(extra) {
		q = q.Where(extra)
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.entityName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	return result, nil
}

func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		if r.hasColumn("name") {
			return "name ASC", nil
		}
		return "created_at DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" || !r.hasColumn(field) || !r.orderable(field) {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}

	return field + " " + direction, nil
}

func (r *BaseCatalogRepo[T]) orderable(field string) bool {
	return len(r.orderColumns) == 0 || slices.Contains(r.orderColumns, field)
}

func isEmptyAnd(s squirrel.Sqlizer) bool {
	and, ok := s.(squirrel.And)
	return ok && len(and) == 0
}
