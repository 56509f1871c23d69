package dto

import (
	"time"

	appinventory "github.com/dukamart/inventory/internal/application/inventory"
	"github.com/dukamart/inventory/internal/domain/inventory"
)

// TimeLayout 响应中的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// InitInventoryRequest 初始化库存请求
// reorder_level/reorder_quantity不传时使用默认值(10/50)
type InitInventoryRequest struct {
	Quantity        int  `json:"quantity" binding:"min=0" example:"100"`
	ReorderLevel    *int `json:"reorder_level" binding:"omitempty,min=0" example:"10"`
	ReorderQuantity *int `json:"reorder_quantity" binding:"omitempty,min=0" example:"50"`
}

// QuantityRequest 预留/释放/补货请求
type QuantityRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1" example:"2"`
	Reason   string `json:"reason" binding:"max=100" example:"ORDER_RESERVATION"`
}

// SellRequest 出库请求
// allow_unreserved不传时使用服务端配置
type SellRequest struct {
	Quantity        int    `json:"quantity" binding:"required,min=1" example:"2"`
	Reason          string `json:"reason" binding:"max=100" example:"ORDER_COMPLETED"`
	AllowUnreserved *bool  `json:"allow_unreserved" example:"true"`
}

// ReserveItemsRequest 多商品预留请求(下单时一次性预留购物车)
type ReserveItemsRequest struct {
	Items  []ReserveItem `json:"items" binding:"required,min=1,dive"`
	Reason string        `json:"reason" binding:"max=100" example:"ORDER-20240115-0001"`
}

// ReserveItem 预留明细
type ReserveItem struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=9999" example:"2"`
}

// InventoryResponse 库存记录
type InventoryResponse struct {
	ID              uint   `json:"id" example:"1"`
	ProductID       uint   `json:"product_id" example:"1"`
	Quantity        int    `json:"quantity" example:"100"`
	Reserved        int    `json:"reserved" example:"5"`
	Available       int    `json:"available" example:"95"`
	ReorderLevel    int    `json:"reorder_level" example:"10"`
	ReorderQuantity int    `json:"reorder_quantity" example:"50"`
	LowStock        bool   `json:"low_stock" example:"false"`
	LastSoldAt      string `json:"last_sold_at,omitempty" example:"2024-01-15 10:30:00"`
	LastRestockAt   string `json:"last_restock_at,omitempty" example:"2024-01-15 10:30:00"`
	Version         uint   `json:"version" example:"3"`
	UpdatedAt       string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// EntryResponse 库存流水
type EntryResponse struct {
	ID             uint   `json:"id" example:"1"`
	Type           string `json:"type" example:"RESERVATION"`
	QuantityChange int    `json:"quantity_change" example:"-2"`
	Reason         string `json:"reason" example:"ORDER_RESERVATION"`
	CreatedAt      string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// InventoryDetailResponse 库存详情(含最近10条流水)
type InventoryDetailResponse struct {
	InventoryResponse
	RecentEntries []EntryResponse `json:"recent_entries"`
}

// LowStockItemResponse 低库存列表项
type LowStockItemResponse struct {
	ProductID       uint   `json:"product_id" example:"1"`
	SKU             string `json:"sku" example:"MAIZE-2KG"`
	ProductName     string `json:"product_name" example:"玉米粉 2kg"`
	Price           int64  `json:"price" example:"21500"`
	Quantity        int    `json:"quantity" example:"3"`
	Reserved        int    `json:"reserved" example:"1"`
	Available       int    `json:"available" example:"2"`
	ReorderLevel    int    `json:"reorder_level" example:"10"`
	ReorderQuantity int    `json:"reorder_quantity" example:"50"`
}

// NewInventoryResponse 领域对象 → HTTP响应
func NewInventoryResponse(rec *inventory.Record) *InventoryResponse {
	return &InventoryResponse{
		ID:              rec.ID,
		ProductID:       rec.ProductID,
		Quantity:        rec.Quantity(),
		Reserved:        rec.Reserved(),
		Available:       rec.Available(),
		ReorderLevel:    rec.ReorderLevel,
		ReorderQuantity: rec.ReorderQuantity,
		LowStock:        rec.IsLowStock(),
		LastSoldAt:      formatTimePtr(rec.LastSoldAt),
		LastRestockAt:   formatTimePtr(rec.LastRestockAt),
		Version:         rec.Version,
		UpdatedAt:       rec.UpdatedAt.Format(TimeLayout),
	}
}

// NewInventoryDetailResponse 库存详情
func NewInventoryDetailResponse(v *appinventory.RecordView) *InventoryDetailResponse {
	entries := make([]EntryResponse, 0, len(v.RecentEntries))
	for _, e := range v.RecentEntries {
		entries = append(entries, EntryResponse{
			ID:             e.ID,
			Type:           string(e.Type),
			QuantityChange: e.QuantityChange,
			Reason:         e.Reason,
			CreatedAt:      e.CreatedAt.Format(TimeLayout),
		})
	}
	return &InventoryDetailResponse{
		InventoryResponse: *NewInventoryResponse(v.Record),
		RecentEntries:     entries,
	}
}

// NewLowStockList 低库存列表
func NewLowStockList(items []*inventory.LowStockItem) []LowStockItemResponse {
	list := make([]LowStockItemResponse, 0, len(items))
	for _, it := range items {
		list = append(list, LowStockItemResponse{
			ProductID:       it.Record.ProductID,
			SKU:             it.SKU,
			ProductName:     it.ProductName,
			Price:           it.Price,
			Quantity:        it.Record.Quantity(),
			Reserved:        it.Record.Reserved(),
			Available:       it.Record.Available(),
			ReorderLevel:    it.Record.ReorderLevel,
			ReorderQuantity: it.Record.ReorderQuantity,
		})
	}
	return list
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}
