package inventory

import (
	"context"
	"time"
)

// Repository 库存记录仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 所有方法都从ctx中获取事务(由TxManager注入),调用方无需关心
type Repository interface {
	// FindByProductID 根据商品ID查找库存记录,不存在返回ErrInventoryNotFound
	FindByProductID(ctx context.Context, productID uint) (*Record, error)

	// Create 创建库存记录,ProductID重复返回ErrRecordExists
	Create(ctx context.Context, rec *Record) error

	// CompareAndSwap 条件更新
	// UPDATE ... WHERE id=? AND version=?,影响0行返回ErrConcurrencyConflict
	// 成功后next.Version = expectedVersion+1
	CompareAndSwap(ctx context.Context, expectedVersion uint, next *Record) error

	// ListLowStock 查询quantity <= reorder_level的记录,按quantity升序
	ListLowStock(ctx context.Context) ([]*LowStockItem, error)
}

// EntryRepository 库存流水仓储接口
type EntryRepository interface {
	// Append 追加流水
	Append(ctx context.Context, entry *Entry) error

	// ListRecent 最近的limit条流水,按created_at倒序
	ListRecent(ctx context.Context, inventoryID uint, limit int) ([]*Entry, error)

	// CountByInventory 流水总数
	CountByInventory(ctx context.Context, inventoryID uint) (int64, error)
}

// LowStockItem 低库存列表项(库存记录+商品信息)
type LowStockItem struct {
	Record      *Record
	ProductName string
	SKU         string
	Price       int64 // 分
}

// LowStockEvent 低库存事件(出库后可用数量 <= 补货阈值)
type LowStockEvent struct {
	ProductID       uint      `json:"product_id"`
	Quantity        int       `json:"quantity"`
	Reserved        int       `json:"reserved"`
	Available       int       `json:"available"`
	ReorderLevel    int       `json:"reorder_level"`
	ReorderQuantity int       `json:"reorder_quantity"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Notifier 低库存通知(观察者)
// 通知是建议性的:实现返回的错误只会被记录,不会影响出库结果
type Notifier interface {
	NotifyLowStock(ctx context.Context, event LowStockEvent) error
}

// RestockObserver 可选接口:补货后库存恢复到阈值以上时回调
// Notifier实现了该接口时,账本会在补货提交后调用(例如清除告警去重标记)
type RestockObserver interface {
	NotifyRestocked(ctx context.Context, productID uint) error
}
