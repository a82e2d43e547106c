package dto

type OpenCartInput struct {
	Mode string `json:"modo"`
}

type AddItemInput struct {
	ProductID int64  `json:"productoId"`
	VariantID *int64 `json:"varianteId"`
}

// UpdateItemInput changes a line. Absent fields are left as they are.
type UpdateItemInput struct {
	Delta *int    `json:"delta"`
	Notes *string `json:"notas"`
}

type SubmitInput struct {
	CustomerName  string  `json:"clienteNombre"`
	OrderType     string  `json:"tipo"`
	PaymentMethod *string `json:"metodoPago"`
}
