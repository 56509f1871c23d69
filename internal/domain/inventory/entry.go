package inventory

import (
	"time"
)

// EntryType 流水类型
type EntryType string

const (
	EntryReservation EntryType = "RESERVATION" // 预留与释放(释放为正数)
	EntrySale        EntryType = "SALE"
	EntryRestock     EntryType = "RESTOCK"
)

// 常用变更原因,调用方也可以传入任意文本
const (
	ReasonOrderReservation = "ORDER_RESERVATION"
	ReasonOrderCancelled   = "ORDER_CANCELLED"
	ReasonOrderCompleted   = "ORDER_COMPLETED"
	ReasonManualRestock    = "MANUAL_RESTOCK"
)

// Entry 库存流水(只追加,不修改不删除)
// 教学要点:
// 1. QuantityChange带符号,按时间顺序累加可以重建计数变化
// 2. 与计数更新在同一个事务内写入,两者要么都成功要么都失败
type Entry struct {
	ID             uint
	InventoryID    uint
	ProductID      uint
	Type           EntryType
	QuantityChange int
	Reason         string
	CreatedAt      time.Time
}

// NewEntry 创建流水
func NewEntry(rec *Record, typ EntryType, change int, reason string, at time.Time) *Entry {
	return &Entry{
		InventoryID:    rec.ID,
		ProductID:      rec.ProductID,
		Type:           typ,
		QuantityChange: change,
		Reason:         reason,
		CreatedAt:      at,
	}
}
