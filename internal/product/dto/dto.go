package dto

type ProductFilters struct {
	SearchQuery        string // Matches product or variant name
	OnlyActiveVariants bool
}
