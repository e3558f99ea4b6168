package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderTestColumns = []string{
	"id", "delivery_address", "customer_name", "customer_phone",
	"total", "status", "created_at", "updated_at",
	"u_id", "u_name", "u_email",
}

var itemTestColumns = []string{
	"product_id", "quantity",
	"p_id", "p_name", "p_description", "p_price", "p_image",
	"p_is_active", "p_created_at", "p_updated_at",
}

var historyTestColumns = []string{"status", "comment", "updated_by", "updated_at"}

func orderRow(id string, status string, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(orderTestColumns).
		AddRow(id, "Khreshchatyk 1", "Olena", "+380501234567", total, status, now, now, nil, nil, nil)
}

func expectResolve(mock sqlmock.Sqlmock, orderID string) {
	now := time.Now()
	mock.ExpectQuery("SELECT oi.product_id, oi.quantity").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(itemTestColumns).
			AddRow(productIDA, 2, productIDA, "Dark Truffle", nil, 10.0, nil, true, now, now))
	mock.ExpectQuery("SELECT status, comment, updated_by, updated_at FROM order_history").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(historyTestColumns))
}

func TestRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	params := CreateParams{
		DeliveryAddress: "Khreshchatyk 1",
		CustomerName:    "Olena",
		CustomerPhone:   "+380501234567",
		Items: []ItemParams{
			{ProductID: productIDA, Quantity: 2},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(nil, params.DeliveryAddress, params.CustomerName, params.CustomerPhone, 20.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(orderID, productIDA, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT o.id, o.delivery_address").
		WithArgs(orderID).
		WillReturnRows(orderRow(orderID, "pending", 20))
	expectResolve(mock, orderID)

	res, err := repo.Insert(context.Background(), params, 20)
	require.NoError(t, err)
	assert.Equal(t, orderID, res.ID)
	assert.Equal(t, StatusPending, res.Status)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Dark Truffle", res.Items[0].Product.Name)
	assert.Empty(t, res.History)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT o.id, o.delivery_address").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(orderTestColumns))

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("DeletedProductLeavesItemWithNilProduct", func(t *testing.T) {
		mock.ExpectQuery("SELECT o.id, o.delivery_address").
			WithArgs(orderID).
			WillReturnRows(orderRow(orderID, "pending", 20))
		mock.ExpectQuery("SELECT oi.product_id, oi.quantity").
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(itemTestColumns).
				AddRow(productIDA, 2, nil, nil, nil, nil, nil, nil, nil, nil))
		mock.ExpectQuery("SELECT status, comment, updated_by, updated_at FROM order_history").
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(historyTestColumns))

		res, err := repo.FindByID(context.Background(), orderID)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, productIDA, res.Items[0].ProductID)
		assert.Equal(t, 2, res.Items[0].Quantity)
		assert.Nil(t, res.Items[0].Product)
	})

	t.Run("ResolvesUserAndHistory", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(orderTestColumns).
			AddRow(orderID, "Khreshchatyk 1", "Olena", "+380501234567", 20.0, "processing",
				now, now, "u-1", "Manager", "manager@example.com")

		mock.ExpectQuery("SELECT o.id, o.delivery_address").
			WithArgs(orderID).
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT oi.product_id, oi.quantity").
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(itemTestColumns))
		comment := "picked up"
		mock.ExpectQuery("SELECT status, comment, updated_by, updated_at FROM order_history").
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(historyTestColumns).
				AddRow("processing", comment, "u-1", now))

		res, err := repo.FindByID(context.Background(), orderID)
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, "manager@example.com", res.User.Email)
		require.Len(t, res.History, 1)
		assert.Equal(t, StatusProcessing, res.History[0].Status)
		require.NotNil(t, res.History[0].Comment)
		assert.Equal(t, comment, *res.History[0].Comment)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	comment := "courier picked up"

	t.Run("Appends exactly one history row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders SET status").
			WithArgs("processing", orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID))
		mock.ExpectExec("INSERT INTO order_history").
			WithArgs(orderID, "processing", &comment, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT o.id, o.delivery_address").
			WithArgs(orderID).
			WillReturnRows(orderRow(orderID, "processing", 20))
		expectResolve(mock, orderID)

		res, err := repo.UpdateStatus(context.Background(), orderID, StatusProcessing, &comment, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, res.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders SET status").
			WithArgs("processing", "missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), "missing", StatusProcessing, nil, nil)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_Update_ReplacesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	total := 30.0

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET total").
		WithArgs(total, orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID))
	mock.ExpectExec("DELETE FROM order_items").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(orderID, productIDA, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT o.id, o.delivery_address").
		WithArgs(orderID).
		WillReturnRows(orderRow(orderID, "pending", total))
	expectResolve(mock, orderID)

	res, err := repo.Update(context.Background(), orderID,
		UpdateParams{Items: []ItemParams{{ProductID: productIDA, Quantity: 3}}}, &total)
	require.NoError(t, err)
	assert.Equal(t, total, res.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("StatusAndSearchFilter", func(t *testing.T) {
		status := "pending"
		search := "olena"

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders o WHERE o.status = \$1 AND \(o.customer_name ILIKE \$2 OR o.customer_phone ILIKE \$2\)`).
			WithArgs(status, "%olena%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT o.id, o.delivery_address").
			WithArgs(status, "%olena%", 20, 0).
			WillReturnRows(orderRow(orderID, status, 20))
		expectResolve(mock, orderID)

		res, total, err := repo.FindAll(context.Background(), ListFilter{
			Status: &status, Search: &search, Page: 1, Limit: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, res, 1)
		assert.Equal(t, orderID, res[0].ID)
	})
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders WHERE id").
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), orderID))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders WHERE id").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrOrderNotFound)
	})
}
