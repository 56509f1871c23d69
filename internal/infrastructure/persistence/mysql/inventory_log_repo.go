package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/dukamart/inventory/internal/domain/inventory"
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// inventoryLogRepository 库存流水仓储实现(只追加)
type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存流水仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.EntryRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Append(ctx context.Context, e *inventory.Entry) error {
	model := &InventoryLogModel{
		InventoryID:    e.InventoryID,
		ProductID:      e.ProductID,
		Type:           string(e.Type),
		QuantityChange: e.QuantityChange,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.ErrDatabaseError.WithErr(err)
	}
	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	return nil
}

// ListRecent 同一时间戳的流水按id倒序,保证顺序稳定
func (r *inventoryLogRepository) ListRecent(ctx context.Context, inventoryID uint, limit int) ([]*inventory.Entry, error) {
	var models []InventoryLogModel
	err := getDB(ctx, r.db).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithErr(err)
	}

	entries := make([]*inventory.Entry, len(models))
	for i := range models {
		entries[i] = toEntryEntity(&models[i])
	}
	return entries, nil
}

func (r *inventoryLogRepository) CountByInventory(ctx context.Context, inventoryID uint) (int64, error) {
	var total int64
	err := getDB(ctx, r.db).Model(&InventoryLogModel{}).Where("inventory_id = ?", inventoryID).Count(&total).Error
	if err != nil {
		return 0, apperrors.ErrDatabaseError.WithErr(err)
	}
	return total, nil
}

func toEntryEntity(m *InventoryLogModel) *inventory.Entry {
	return &inventory.Entry{
		ID:             m.ID,
		InventoryID:    m.InventoryID,
		ProductID:      m.ProductID,
		Type:           inventory.EntryType(m.Type),
		QuantityChange: m.QuantityChange,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}
