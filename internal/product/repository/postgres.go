package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertVariantQuery = `
        INSERT INTO producto_variantes (producto_id, nombre, precio, sku, imagen, activo)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO productos (nombre, precio, imagen, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	if err := tx.QueryRowxContext(ctx, query, p.Name, p.Price, p.Image, p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		v.ProductID = p.ID
		if err := tx.QueryRowxContext(ctx, insertVariantQuery, p.ID, v.Name, v.Price, v.SKU, v.Image, v.IsActive).Scan(&v.ID); err != nil {
			return fmt.Errorf("failed to insert variant %q: %w", v.Name, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `SELECT id, nombre, precio, imagen, created_at, updated_at FROM productos WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	variants, err := r.ListVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	var products []model.Product

	query := `SELECT id, nombre, precio, imagen, created_at, updated_at FROM productos`
	args := []interface{}{}
	if f != nil && f.SearchQuery != "" {
		query += ` WHERE nombre ILIKE $1 OR EXISTS (
            SELECT 1 FROM producto_variantes v WHERE v.producto_id = productos.id AND v.nombre ILIKE $1
        )`
		args = append(args, "%"+f.SearchQuery+"%")
	}
	query += ` ORDER BY id ASC`

	if err := r.DB.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}

	onlyActive := f != nil && f.OnlyActiveVariants
	if err := r.attachVariants(ctx, products, onlyActive); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT id, nombre, precio, imagen, created_at, updated_at
        FROM productos WHERE id IN (?) ORDER BY id ASC
    `, ids)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products, false); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariants loads the variants of every product with a single query.
func (r *PGRepository) attachVariants(ctx context.Context, products []model.Product, onlyActive bool) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		products[i].Variants = []model.ProductVariant{}
	}

	base := `SELECT id, producto_id, nombre, precio, sku, imagen, activo FROM producto_variantes WHERE producto_id IN (?)`
	if onlyActive {
		base += ` AND activo = TRUE`
	}
	query, args, err := sqlx.In(base+` ORDER BY id ASC`, ids)
	if err != nil {
		return err
	}

	var variants []model.ProductVariant
	if err := r.DB.SelectContext(ctx, &variants, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, v := range variants {
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return nil
}

func (r *PGRepository) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	variants := []model.ProductVariant{}
	query := `
        SELECT id, producto_id, nombre, precio, sku, imagen, activo
        FROM producto_variantes WHERE producto_id = $1 ORDER BY id ASC
    `
	if err := r.DB.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *PGRepository) UpdateWithVariants(ctx context.Context, p *model.Product, variants []dto.VariantSpec, replaceVariants bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE productos SET nombre = $1, precio = $2, imagen = $3, updated_at = $4 WHERE id = $5`,
		p.Name, p.Price, p.Image, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return product.ErrNotFound
	}

	if !replaceVariants {
		return tx.Commit()
	}

	var existing []int64
	err = tx.SelectContext(ctx, &existing,
		`SELECT id FROM producto_variantes WHERE producto_id = $1 ORDER BY id FOR UPDATE`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to read variants: %w", err)
	}

	plan, err := product.PlanVariants(existing, variants)
	if err != nil {
		return err
	}
	if plan.IsEmpty() {
		return tx.Commit()
	}

	if len(plan.ToDelete) > 0 {
		query, args, err := sqlx.In(`DELETE FROM producto_variantes WHERE producto_id = ? AND id IN (?)`, p.ID, plan.ToDelete)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}
	}

	for _, v := range plan.ToUpdate {
		res, err := tx.ExecContext(ctx, `
            UPDATE producto_variantes
            SET nombre = $1, precio = $2, sku = $3, imagen = $4, activo = $5
            WHERE id = $6 AND producto_id = $7
        `, v.Name, v.Price, v.SKU, v.Image, v.Active, *v.ID, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update variant %d: %w", *v.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("variant %d: %w", *v.ID, product.ErrForeignVariant)
		}
	}

	for _, v := range plan.ToInsert {
		var newID int64
		if err := tx.QueryRowxContext(ctx, insertVariantQuery, p.ID, v.Name, v.Price, v.SKU, v.Image, v.Active).Scan(&newID); err != nil {
			return fmt.Errorf("failed to insert variant %q: %w", v.Name, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pedido_items WHERE producto_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM producto_variantes WHERE producto_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete variants: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return product.ErrNotFound
	}

	return tx.Commit()
}
