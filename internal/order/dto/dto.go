package dto

import "github.com/fekuna/omnipos-ordering-service/internal/model"

type OrderFilters struct {
	Status model.OrderStatus
	Limit  int
}

type UpdateStatusInput struct {
	ID     int64             `json:"-"`
	Status model.OrderStatus `json:"estado"`
}
