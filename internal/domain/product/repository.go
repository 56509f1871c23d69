package product

import (
	"context"
)

// Repository 商品仓储接口
type Repository interface {
	// Create 创建商品,SKU重复返回ErrSKUDuplicate
	Create(ctx context.Context, p *Product) error

	// FindByID 根据ID查找商品,不存在返回ErrProductNotFound
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindBySKU 根据SKU查找商品
	FindBySKU(ctx context.Context, sku string) (*Product, error)
}
