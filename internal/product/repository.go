package product

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
	Insert(ctx context.Context, params CreateParams) (*Product, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.image,
	       p.is_active, p.created_at, p.updated_at,
	       c.id, c.name
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	var (
		p       Product
		catID   sql.NullString
		catName sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		p.Category = &CategoryRef{ID: catID.String, Name: catName.String}
	}
	return &p, nil
}

func (r *repository) Insert(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("product_name", params.Name),
	)
	log.Info("Insert product started")

	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, image, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, TRUE))
		RETURNING id`,
		params.Name, params.Description, params.Price, params.Image, params.CategoryID, params.IsActive,
	).Scan(&id)
	if err != nil {
		log.Error("Insert product DB query failed", zap.Error(err))
		return nil, fmt.Errorf("insert product failed: %w", err)
	}

	log.Info("Insert product success", zap.String("product_id", id))
	return r.FindByID(ctx, id)
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]*Product, int64, error) {
	where := []string{}
	args := []interface{}{}

	if filter.Category != nil {
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.IsActive != nil {
		where = append(where, fmt.Sprintf("p.is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != nil && *filter.Search != "" {
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter.Search+"%")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM products p" + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products failed: %w", err)
	}

	query := productSelect + cond + " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products failed: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product failed: %w", err)
		}
		products = append(products, p)
	}

	return products, total, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id string) (*Product, error) {
	query := productSelect + " WHERE p.id = $1"

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product failed: %w", err)
	}

	return p, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}

	query := productSelect + " WHERE p.id = ANY($1)"

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query products by ids failed: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product failed: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) Update(ctx context.Context, id string, params UpdateParams) (*Product, error) {
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
	if params.Price != nil {
		set = append(set, fmt.Sprintf("price = $%d", len(args)+1))
		args = append(args, *params.Price)
	}
	if params.Image != nil {
		set = append(set, fmt.Sprintf("image = $%d", len(args)+1))
		args = append(args, *params.Image)
	}
	if params.CategoryID != nil {
		set = append(set, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *params.CategoryID)
	}
	if params.IsActive != nil {
		set = append(set, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *params.IsActive)
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	set = append(set, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $%d RETURNING id",
		strings.Join(set, ", "), len(args)+1,
	)
	args = append(args, id)

	var updatedID string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product failed: %w", err)
	}

	return r.FindByID(ctx, updatedID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product failed: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}
