package cart

import "github.com/fekuna/omnipos-ordering-service/internal/apperror"

var (
	ErrNotFound             = apperror.New(apperror.KindNotFound, "CartNotFound", "cart not found")
	ErrInvalidMode          = apperror.New(apperror.KindValidation, "InvalidCartMode", "cart mode must be waiter or customer")
	ErrCustomerNameRequired = apperror.New(apperror.KindValidation, "CustomerNameRequired", "customer name is required")
	ErrEmptyCart            = apperror.New(apperror.KindValidation, "EmptyCart", "cart is empty")
	ErrSubmissionInFlight   = apperror.New(apperror.KindConflict, "SubmissionInFlight", "order submission already in progress")
	ErrVariantNotFound      = apperror.New(apperror.KindNotFound, "VariantNotFound", "variant not found for product")
	ErrInvalidIndex         = apperror.New(apperror.KindValidation, "InvalidID", "invalid line index")
)
