package dto

import "github.com/shopspring/decimal"

// VariantInput is a variant descriptor as the admin UI sends it.
// ID is nil for variants that do not exist yet.
type VariantInput struct {
	ID     *int64  `json:"id"`
	Name   string  `json:"nombre"`
	Price  Price   `json:"precio"`
	SKU    *string `json:"sku"`
	Image  *string `json:"imagen"`
	Active *bool   `json:"activo"`
}

// VariantSpec is a validated VariantInput with coerced price and defaults applied.
type VariantSpec struct {
	ID     *int64
	Name   string
	Price  decimal.Decimal
	SKU    *string
	Image  *string
	Active bool
}

type CreateProductInput struct {
	Name     string         `json:"nombre"`
	Price    Price          `json:"precio"`
	Image    *string        `json:"imagen"`
	Variants []VariantInput `json:"variantes"`
}

type UpdateProductInput struct {
	ID    int64   `json:"-"`
	Name  string  `json:"nombre"`
	Price Price   `json:"precio"`
	Image *string `json:"imagen"`
	// Variants is nil when the caller did not send a list; an empty list
	// removes every variant.
	Variants *[]VariantInput `json:"variantes"`
}
