package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64            `db:"id" json:"id"`
	Name      string           `db:"nombre" json:"nombre"`
	Price     decimal.Decimal  `db:"precio" json:"precio"`
	Image     *string          `db:"imagen" json:"imagen,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
	Variants  []ProductVariant `db:"-" json:"variantes"` // Loaded separately
}

// ProductVariant is a priced option of a product. Its price replaces the
// product price when selected.
type ProductVariant struct {
	ID        int64           `db:"id" json:"id"`
	ProductID int64           `db:"producto_id" json:"productoId"`
	Name      string          `db:"nombre" json:"nombre"`
	Price     decimal.Decimal `db:"precio" json:"precio"`
	SKU       *string         `db:"sku" json:"sku,omitempty"`
	Image     *string         `db:"imagen" json:"imagen,omitempty"`
	IsActive  bool            `db:"activo" json:"activo"`
}

// ActiveVariants returns the variants a customer may pick, in catalog order.
func (p *Product) ActiveVariants() []ProductVariant {
	out := make([]ProductVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out
}
