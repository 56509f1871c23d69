package product

import (
	"strings"
	"time"
)

// Product 商品实体
// 设计说明:
// 1. 价格使用int64存储"分"为单位(KES cents,避免浮点数精度问题)
// 2. SKU作为业务唯一标识(数据库层保证唯一性)
// 3. 库存不在商品上维护,由inventory聚合负责
type Product struct {
	ID        uint
	SKU       string
	Name      string
	Price     int64 // 价格(单位:分)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct 创建新商品(工厂方法)
// 业务规则:名称非空,价格必须>0
func NewProduct(sku, name string, price int64) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	now := time.Now()
	return &Product{
		SKU:       strings.ToUpper(sku),
		Name:      name,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
