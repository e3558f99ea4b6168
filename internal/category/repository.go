package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shokolad-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, name string, description, parentID *string) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByParent(ctx context.Context, parentID string) ([]*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Search(ctx context.Context, query string) ([]*Category, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Category, error)
	SetActive(ctx context.Context, id string, active bool) (*Category, error)
	SetOrder(ctx context.Context, id string, order int) (*Category, error)
	Delete(ctx context.Context, ids []string) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = "id, name, description, parent_id, sort_order, is_active, created_at, updated_at"

func scanCategory(row interface{ Scan(...interface{}) error }) (*Category, error) {
	var c Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Parent,
		&c.Order, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Insert(
	ctx context.Context,
	name string,
	description, parentID *string,
) (*Category, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("category_name", name),
	)
	log.Info("Insert category started")

	query := `
		INSERT INTO categories (name, description, parent_id)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, name, description, parentID))
	if err != nil {
		log.Error("Insert category DB query failed", zap.Error(err))
		return nil, fmt.Errorf("insert category failed: %w", err)
	}

	log.Info("Insert category success", zap.String("category_id", c.ID))
	return c, nil
}

func (r *repository) FindAll(ctx context.Context) ([]*Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories failed: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category failed: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories failed: %w", err)
	}

	return categories, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category failed: %w", err)
	}

	return c, nil
}

func (r *repository) FindByParent(ctx context.Context, parentID string) ([]*Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE parent_id = $1
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("query subcategories failed: %w", err)
	}
	defer rows.Close()

	children := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory failed: %w", err)
		}
		children = append(children, c)
	}

	return children, rows.Err()
}

func (r *repository) FindByName(ctx context.Context, name string) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1 LIMIT 1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name failed: %w", err)
	}

	return c, nil
}

func (r *repository) Search(ctx context.Context, query string) ([]*Category, error) {
	stmt := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE name ILIKE $1
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, stmt, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search categories failed: %w", err)
	}
	defer rows.Close()

	results := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category failed: %w", err)
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

func (r *repository) Update(ctx context.Context, id string, params UpdateParams) (*Category, error) {
	set := []string{}
	args := []interface{}{}

	if params.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *params.Name)
	}
	if params.Description != nil {
		set = append(set, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *params.Description)
	}
	if params.Parent != nil {
		set = append(set, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, *params.Parent)
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	set = append(set, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE categories SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args)+1, categoryColumns,
	)
	args = append(args, id)

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category failed: %w", err)
	}

	return c, nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) (*Category, error) {
	query := `
		UPDATE categories
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, active, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set category active failed: %w", err)
	}

	return c, nil
}

func (r *repository) SetOrder(ctx context.Context, id string, order int) (*Category, error) {
	query := `
		UPDATE categories
		SET sort_order = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, order, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set category order failed: %w", err)
	}

	return c, nil
}

func (r *repository) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("delete categories failed: %w", err)
	}

	return res.RowsAffected()
}
