// Package api contains API contract definitions for Demand Pulse.
// Version v1 represents the current stable API version.
package api

// Common request parameters

// PageRequest represents common pagination parameters for table endpoints.
// Limit is capped by the configured display limit server-side.
type PageRequest struct {
	Limit  int `json:"limit" query:"limit" validate:"omitempty,min=1,max=1000"`
	Offset int `json:"offset" query:"offset" validate:"omitempty,min=0"`
}

// Dataset API requests

// DatasetRequest identifies one dataset plus the page of rows wanted.
type DatasetRequest struct {
	Key string `json:"key" param:"key" validate:"required,dataset_key"`
	PageRequest
}

// SeriesRequest identifies one product/store pair for series assembly.
type SeriesRequest struct {
	ItemID  string `json:"item_id" param:"item" validate:"required,item_id"`
	StoreID string `json:"store_id" param:"store" validate:"required,store_id"`
}

// ProductsRequest filters the product catalog listing.
type ProductsRequest struct {
	Store string `json:"store" query:"store" validate:"omitempty,store_id"`
	Limit int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=1000"`
}

// PatternRequest identifies one behavioral pattern type.
type PatternRequest struct {
	Type string `json:"type" param:"type" validate:"required"`
}

// Export API requests

// ExportRequest describes one dataset export.
type ExportRequest struct {
	Key    string `json:"key" param:"key" validate:"required,dataset_key"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
