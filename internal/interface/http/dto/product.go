package dto

import (
	"fmt"

	"github.com/dukamart/inventory/internal/domain/product"
)

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU   string `json:"sku" binding:"required,max=64" example:"MAIZE-2KG"`
	Name  string `json:"name" binding:"required,max=200" example:"玉米粉 2kg"`
	Price int64  `json:"price" binding:"required,min=1" example:"21500"` // 价格(分)
}

// ProductResponse 商品响应
type ProductResponse struct {
	ID         uint   `json:"id" example:"1"`
	SKU        string `json:"sku" example:"MAIZE-2KG"`
	Name       string `json:"name" example:"玉米粉 2kg"`
	Price      int64  `json:"price" example:"21500"`
	PriceUnits string `json:"price_units" example:"215.00"` // 价格(元),方便前端显示
	CreatedAt  string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// NewProductResponse 领域对象 → HTTP响应
func NewProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price,
		PriceUnits: FormatPrice(p.Price),
		CreatedAt:  p.CreatedAt.Format(TimeLayout),
	}
}

// FormatPrice 分 → 元,例如 21500 → "215.00"
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
