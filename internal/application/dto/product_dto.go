package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	CategoryID string           `json:"category_id"`
	FormatMl   *int64           `json:"format_ml,omitempty"`
	SalePrice  *decimal.Decimal `json:"sale_price,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto; nil no modifica.
type UpdateProductRequest struct {
	Name       *string          `json:"name,omitempty"`
	CategoryID *string          `json:"category_id,omitempty"`
	FormatMl   *int64           `json:"format_ml,omitempty"`
	SalePrice  *decimal.Decimal `json:"sale_price,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	CategoryID   string           `json:"category_id"`
	CategoryName string           `json:"category_name,omitempty"`
	FormatMl     int64            `json:"format_ml"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CategoryRequest entrada para crear una categoría.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// ImportSummary resultado de una importación masiva de productos.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ProductFromEntity construye la respuesta del producto con su formato efectivo.
func ProductFromEntity(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		FormatMl:     p.EffectiveFormatMl(),
		SalePrice:    p.SalePrice,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CategoryFromEntity construye la respuesta de la categoría.
func CategoryFromEntity(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, SortOrder: c.SortOrder}
}
