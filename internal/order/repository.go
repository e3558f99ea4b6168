package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shokolad-be/internal/logger"
	"shokolad-be/internal/product"

	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, params CreateParams, total float64) (*Order, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, id string, params UpdateParams, total *float64) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, comment, updatedBy *string) (*Order, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT o.id, o.delivery_address, o.customer_name, o.customer_phone,
	       o.total, o.status, o.created_at, o.updated_at,
	       u.id, u.name, u.email
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var (
		o         Order
		userID    sql.NullString
		userName  sql.NullString
		userEmail sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.DeliveryAddress, &o.CustomerName, &o.CustomerPhone,
		&o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&userID, &userName, &userEmail,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		o.User = &UserRef{ID: userID.String, Name: userName.String, Email: userEmail.String}
	}
	return &o, nil
}

func (r *repository) Insert(ctx context.Context, params CreateParams, total float64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("customer_name", params.CustomerName),
	)
	log.Info("Insert order started")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert order tx failed: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, delivery_address, customer_name, customer_phone, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		params.UserID, params.DeliveryAddress, params.CustomerName, params.CustomerPhone, total,
	).Scan(&id)
	if err != nil {
		log.Error("Insert order DB query failed", zap.Error(err))
		return nil, fmt.Errorf("insert order failed: %w", err)
	}

	if err := insertItems(ctx, tx, id, params.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert order tx failed: %w", err)
	}

	log.Info("Insert order success", zap.String("order_id", id))
	return r.FindByID(ctx, id)
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []ItemParams) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)`,
			orderID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item failed: %w", err)
		}
	}
	return nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]*Order, int64, error) {
	where := []string{}
	args := []interface{}{}

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.User != nil {
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)+1))
		args = append(args, *filter.User)
	}
	if filter.Search != nil && *filter.Search != "" {
		n := len(args) + 1
		where = append(where, fmt.Sprintf("(o.customer_name ILIKE $%d OR o.customer_phone ILIKE $%d)", n, n))
		args = append(args, "%"+*filter.Search+"%")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM orders o" + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders failed: %w", err)
	}

	query := orderSelect + cond + " ORDER BY o.created_at DESC"
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
		return nil, 0, fmt.Errorf("query orders failed: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order failed: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders failed: %w", err)
	}

	for _, o := range orders {
		if err := r.resolve(ctx, o); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+" WHERE o.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order failed: %w", err)
	}

	if err := r.resolve(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// resolve attaches items with their product records and the status history.
func (r *repository) resolve(ctx context.Context, o *Order) error {
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Items = items

	history, err := r.loadHistory(ctx, o.ID)
	if err != nil {
		return err
	}
	o.History = history

	return nil
}

func (r *repository) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, oi.quantity,
		       p.id, p.name, p.description, p.price, p.image,
		       p.is_active, p.created_at, p.updated_at
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items failed: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			item     Item
			pID      sql.NullString
			pName    sql.NullString
			pDesc    *string
			pPrice   sql.NullFloat64
			pImage   *string
			pActive  sql.NullBool
			pCreated sql.NullTime
			pUpdated sql.NullTime
		)
		err := rows.Scan(
			&item.ProductID, &item.Quantity,
			&pID, &pName, &pDesc, &pPrice, &pImage,
			&pActive, &pCreated, &pUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item failed: %w", err)
		}
		if pID.Valid {
			item.Product = &product.Product{
				ID:          pID.String,
				Name:        pName.String,
				Description: pDesc,
				Price:       pPrice.Float64,
				Image:       pImage,
				IsActive:    pActive.Bool,
				CreatedAt:   pCreated.Time,
				UpdatedAt:   pUpdated.Time,
			}
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *repository) loadHistory(ctx context.Context, orderID string) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, comment, updated_by, updated_at
		FROM order_history
		WHERE order_id = $1
		ORDER BY updated_at ASC`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order history failed: %w", err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.Status, &entry.Comment, &entry.UpdatedBy, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order history failed: %w", err)
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

func (r *repository) Update(ctx context.Context, id string, params UpdateParams, total *float64) (*Order, error) {
	set := []string{}
	args := []interface{}{}

	if params.DeliveryAddress != nil {
		set = append(set, fmt.Sprintf("delivery_address = $%d", len(args)+1))
		args = append(args, *params.DeliveryAddress)
	}
	if params.CustomerName != nil {
		set = append(set, fmt.Sprintf("customer_name = $%d", len(args)+1))
		args = append(args, *params.CustomerName)
	}
	if params.CustomerPhone != nil {
		set = append(set, fmt.Sprintf("customer_phone = $%d", len(args)+1))
		args = append(args, *params.CustomerPhone)
	}
	if total != nil {
		set = append(set, fmt.Sprintf("total = $%d", len(args)+1))
		args = append(args, *total)
	}

	if len(set) == 0 && params.Items == nil {
		return r.FindByID(ctx, id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update order tx failed: %w", err)
	}
	defer tx.Rollback()

	set = append(set, "updated_at = NOW()")
	query := fmt.Sprintf(
		"UPDATE orders SET %s WHERE id = $%d RETURNING id",
		strings.Join(set, ", "), len(args)+1,
	)
	args = append(args, id)

	var updatedID string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order failed: %w", err)
	}

	if params.Items != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear order items failed: %w", err)
		}
		if err := insertItems(ctx, tx, id, params.Items); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update order tx failed: %w", err)
	}

	return r.FindByID(ctx, id)
}

// UpdateStatus moves the order and appends one history record in the same
// transaction.
func (r *repository) UpdateStatus(ctx context.Context, id string, status Status, comment, updatedBy *string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status tx failed: %w", err)
	}
	defer tx.Rollback()

	var updatedID string
	err = tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id`,
		status, id,
	).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status failed: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_history (order_id, status, comment, updated_by)
		VALUES ($1, $2, $3, $4)`,
		id, status, comment, updatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order history failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status tx failed: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order failed: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
