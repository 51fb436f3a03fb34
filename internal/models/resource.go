package models

// Resource is one tracked inventory resource. Available is the quantity on hand.
type Resource struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
}

// ResourceInput is the add/edit form for a resource.
type ResourceInput struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Used      int    `json:"used" validate:"gte=0"`
	Available int    `json:"available" validate:"gte=0"`
}

// LowStockThreshold marks resources that the inventory view highlights.
const LowStockThreshold = 10
