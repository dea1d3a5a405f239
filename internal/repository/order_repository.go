package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// OrderRepository is the Postgres store of record for orders. Items are a
// JSONB column; they are a frozen value copy, never joined against the
// catalog.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, customer_name, email, phone, address, special_instructions,
	items, subtotal, tax_amount, total_amount, total_units,
	status, payment_status, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, customer_name, email, phone, address, special_instructions,
	              items, subtotal, tax_amount, total_amount, total_units,
	              status, payment_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.Address,
		order.SpecialInstructions,
		itemsJSON,
		order.Subtotal,
		order.TaxAmount,
		order.TotalAmount,
		order.TotalUnits,
		order.Status,
		order.PaymentStatus)

	if insertErr != nil {
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.update(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	return r.update(ctx, `UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *OrderRepository) update(ctx context.Context, query string, id uuid.UUID, value interface{}) error {
	result, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	if err := row.Scan(
		&order.ID,
		&order.Customer.Name,
		&order.Customer.Email,
		&order.Customer.Phone,
		&order.Address,
		&order.SpecialInstructions,
		&itemsJSON,
		&order.Subtotal,
		&order.TaxAmount,
		&order.TotalAmount,
		&order.TotalUnits,
		&order.Status,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}
