package product

import "github.com/fekuna/omnipos-ordering-service/internal/apperror"

var (
	ErrInvalidID           = apperror.New(apperror.KindValidation, "InvalidID", "invalid product id")
	ErrNotFound            = apperror.New(apperror.KindNotFound, "ProductNotFound", "product not found")
	ErrNameRequired        = apperror.New(apperror.KindValidation, "ProductNameRequired", "product name is required")
	ErrInvalidPrice        = apperror.New(apperror.KindValidation, "InvalidPrice", "price must be a non-negative number")
	ErrInvalidVariantID    = apperror.New(apperror.KindValidation, "InvalidVariantID", "variant id must be positive")
	ErrVariantNameRequired = apperror.New(apperror.KindValidation, "VariantNameRequired", "variant name is required")
	ErrDuplicateVariant    = apperror.New(apperror.KindValidation, "DuplicateVariant", "variant id listed more than once")
	ErrForeignVariant      = apperror.New(apperror.KindValidation, "ForeignVariant", "variant does not belong to product")
)
