package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusPreparing OrderStatus = "preparando"
	OrderStatusReady     OrderStatus = "listo"
	OrderStatusDelivered OrderStatus = "entregado"
	OrderStatusCancelled OrderStatus = "cancelado"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderTypeLocal is the tag for orders placed at the restaurant (waiter or table).
const OrderTypeLocal = "LOCAL"

var PaymentMethods = []string{"Efectivo", "Tarjeta", "Transferencia"}

func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

type Order struct {
	ID            int64           `db:"id" json:"id"`
	CustomerName  string          `db:"cliente_nombre" json:"clienteNombre"`
	Type          string          `db:"tipo" json:"tipo"`
	PaymentMethod *string         `db:"metodo_pago" json:"metodoPago"`
	Status        OrderStatus     `db:"estado" json:"estado"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
	Items         []OrderItem     `db:"-" json:"items"`
}

type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"pedido_id" json:"pedidoId"`
	ProductID   int64           `db:"producto_id" json:"productoId"`
	VariantID   *int64          `db:"variante_id" json:"varianteId,omitempty"`
	VariantName *string         `db:"variante_nombre" json:"varianteNombre,omitempty"`
	Quantity    int             `db:"cantidad" json:"cantidad"`
	Notes       string          `db:"notas" json:"notas"`
	UnitPrice   decimal.Decimal `db:"precio" json:"precioCalculado"`
}

// OrderSubmission is the write-once payload built from a cart at submit time.
type OrderSubmission struct {
	CustomerName  string           `json:"clienteNombre"`
	OrderType     string           `json:"tipo"`
	PaymentMethod *string          `json:"metodoPago"`
	Items         []SubmissionItem `json:"items"`
}

type SubmissionItem struct {
	ProductID   int64           `json:"productoId"`
	Quantity    int             `json:"cantidad"`
	Notes       string          `json:"notas"`
	VariantID   *int64          `json:"varianteId,omitempty"`
	VariantName *string         `json:"varianteNombre,omitempty"`
	UnitPrice   decimal.Decimal `json:"precioCalculado"`
}
