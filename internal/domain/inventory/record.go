package inventory

import (
	"time"
)

// 默认补货参数(新建库存记录时未指定则使用)
const (
	DefaultReorderLevel    = 10
	DefaultReorderQuantity = 50
)

// Record 库存记录(聚合根)
// DDD设计说明:
// 1. 每个商品最多一条库存记录(ProductID唯一)
// 2. 计数保存在Stock值对象中,Record本身不直接修改计数
// 3. Version是乐观锁版本号,每次成功更新+1,用于CompareAndSwap
type Record struct {
	ID              uint
	ProductID       uint
	Stock           Stock
	ReorderLevel    int // 补货阈值
	ReorderQuantity int // 建议补货量(仅作为提示,不会自动补货)
	LastSoldAt      *time.Time
	LastRestockAt   *time.Time
	Version         uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRecord 创建新库存记录(工厂方法)
// 初始状态:Reserved=0, Available=quantity
func NewRecord(productID uint, quantity, reorderLevel, reorderQuantity int) (*Record, error) {
	stock, err := NewStock(quantity, 0)
	if err != nil {
		return nil, err
	}
	if reorderLevel < 0 || reorderQuantity < 0 {
		return nil, ErrInvalidReorderLevel
	}
	now := time.Now()
	return &Record{
		ProductID:       productID,
		Stock:           stock,
		ReorderLevel:    reorderLevel,
		ReorderQuantity: reorderQuantity,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (r *Record) Quantity() int  { return r.Stock.Quantity() }
func (r *Record) Reserved() int  { return r.Stock.Reserved() }
func (r *Record) Available() int { return r.Stock.Available() }

// IsLowStock 出库后的补货提示判断(按可用数量)
func (r *Record) IsLowStock() bool {
	return r.Available() <= r.ReorderLevel
}

// Apply 基于当前记录生成下一个版本(不修改原记录)
// 返回值用于CompareAndSwap,Version由仓储在更新成功后递增
func (r *Record) Apply(next Stock, at time.Time) *Record {
	cp := *r
	cp.Stock = next
	cp.UpdatedAt = at
	return &cp
}

// LowStockEvent 构造低库存事件
func (r *Record) LowStockEvent(at time.Time) LowStockEvent {
	return LowStockEvent{
		ProductID:       r.ProductID,
		Quantity:        r.Quantity(),
		Reserved:        r.Reserved(),
		Available:       r.Available(),
		ReorderLevel:    r.ReorderLevel,
		ReorderQuantity: r.ReorderQuantity,
		OccurredAt:      at,
	}
}
