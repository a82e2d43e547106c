package order

import "github.com/fekuna/omnipos-ordering-service/internal/apperror"

var (
	ErrInvalidID            = apperror.New(apperror.KindValidation, "InvalidID", "invalid order id")
	ErrNotFound             = apperror.New(apperror.KindNotFound, "OrderNotFound", "order not found")
	ErrCustomerNameRequired = apperror.New(apperror.KindValidation, "CustomerNameRequired", "customer name is required")
	ErrNoItems              = apperror.New(apperror.KindValidation, "EmptyCart", "order has no items")
	ErrInvalidQuantity      = apperror.New(apperror.KindValidation, "InvalidQuantity", "quantity must be at least 1")
	ErrInvalidPrice         = apperror.New(apperror.KindValidation, "InvalidPrice", "item price must be non-negative")
	ErrInvalidProduct       = apperror.New(apperror.KindValidation, "InvalidID", "item product id must be positive")
	ErrInvalidStatus        = apperror.New(apperror.KindValidation, "InvalidOrderStatus", "unknown order status")
	ErrInvalidPaymentMethod = apperror.New(apperror.KindValidation, "InvalidPaymentMethod", "unknown payment method")
)
