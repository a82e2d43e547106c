package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/order"
	"github.com/fekuna/omnipos-ordering-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, cliente_nombre, tipo, metodo_pago, estado, total, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO pedidos (cliente_nombre, tipo, metodo_pago, estado, total, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	err = tx.QueryRowxContext(ctx, query,
		o.CustomerName, o.Type, o.PaymentMethod, o.Status, o.Total, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO pedido_items (pedido_id, producto_id, variante_id, variante_nombre, cantidad, notas, precio)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := tx.QueryRowxContext(ctx, itemQuery,
			o.ID, it.ProductID, it.VariantID, it.VariantName, it.Quantity, it.Notes, it.UnitPrice,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item for product %d: %w", it.ProductID, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM pedidos WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	orders := []model.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	orders := []model.Order{}

	query := `SELECT ` + orderColumns + ` FROM pedidos`
	args := []interface{}{}
	if f != nil && f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` WHERE estado = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f != nil && f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	if err := r.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PGRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	query, args, err := sqlx.In(`
        SELECT id, pedido_id, producto_id, variante_id, variante_nombre, cantidad, notas, precio
        FROM pedido_items WHERE pedido_id IN (?) ORDER BY id ASC
    `, ids)
	if err != nil {
		return err
	}

	var items []model.OrderItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE pedidos SET estado = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pedido_items WHERE pedido_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM pedidos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return order.ErrNotFound
	}

	return tx.Commit()
}
