package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dukamart/inventory/internal/domain/inventory"
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// inventoryRepository 库存记录仓储实现
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存记录仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByProductID(ctx context.Context, productID uint) (*inventory.Record, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).Where("product_id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithErr(err)
	}
	return toRecordEntity(&model)
}

func (r *inventoryRepository) Create(ctx context.Context, rec *inventory.Record) error {
	model := toInventoryModel(rec)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrRecordExists
		}
		return apperrors.ErrDatabaseError.WithErr(err)
	}

	rec.ID = model.ID
	rec.Version = model.Version
	rec.CreatedAt = model.CreatedAt
	rec.UpdatedAt = model.UpdatedAt
	return nil
}

// CompareAndSwap 乐观锁条件更新
//
// 教学要点:
// 1. WHERE version = ? 保证读到的值在写入前没有被其他事务修改
// 2. 影响0行说明版本已变化,返回ErrConcurrencyConflict由上层重试
// 3. 不使用SELECT ... FOR UPDATE,读路径不加锁,冲突时才付出重试成本
func (r *inventoryRepository) CompareAndSwap(ctx context.Context, expectedVersion uint, next *inventory.Record) error {
	now := next.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	result := getDB(ctx, r.db).Model(&InventoryModel{}).
		Where("id = ? AND version = ?", next.ID, expectedVersion).
		Updates(map[string]interface{}{
			"quantity":         next.Quantity(),
			"reserved":         next.Reserved(),
			"reorder_level":    next.ReorderLevel,
			"reorder_quantity": next.ReorderQuantity,
			"last_sold_at":     next.LastSoldAt,
			"last_restock_at":  next.LastRestockAt,
			"version":          expectedVersion + 1,
			"updated_at":       now,
		})
	if result.Error != nil {
		return apperrors.ErrDatabaseError.WithErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrConcurrencyConflict
	}

	next.Version = expectedVersion + 1
	next.UpdatedAt = now
	return nil
}

// lowStockRow 低库存查询结果(库存记录 JOIN 商品)
type lowStockRow struct {
	InventoryModel
	ProductName  string
	ProductSKU   string
	ProductPrice int64
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]*inventory.LowStockItem, error) {
	var rows []lowStockRow
	err := getDB(ctx, r.db).
		Table("inventory_records AS i").
		Select("i.*, p.name AS product_name, p.sku AS product_sku, p.price AS product_price").
		Joins("JOIN products AS p ON p.id = i.product_id").
		Where("i.quantity <= i.reorder_level").
		Order("i.quantity ASC, i.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithErr(err)
	}

	items := make([]*inventory.LowStockItem, 0, len(rows))
	for i := range rows {
		rec, err := toRecordEntity(&rows[i].InventoryModel)
		if err != nil {
			return nil, err
		}
		items = append(items, &inventory.LowStockItem{
			Record:      rec,
			ProductName: rows[i].ProductName,
			SKU:         rows[i].ProductSKU,
			Price:       rows[i].ProductPrice,
		})
	}
	return items, nil
}

func toInventoryModel(rec *inventory.Record) *InventoryModel {
	return &InventoryModel{
		ID:              rec.ID,
		ProductID:       rec.ProductID,
		Quantity:        rec.Quantity(),
		Reserved:        rec.Reserved(),
		ReorderLevel:    rec.ReorderLevel,
		ReorderQuantity: rec.ReorderQuantity,
		LastSoldAt:      rec.LastSoldAt,
		LastRestockAt:   rec.LastRestockAt,
		Version:         rec.Version,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// toRecordEntity 数据库中的计数也要经过NewStock校验,
// 被手工改坏的数据在这里暴露出来,而不是继续参与计算
func toRecordEntity(model *InventoryModel) (*inventory.Record, error) {
	stock, err := inventory.NewStock(model.Quantity, model.Reserved)
	if err != nil {
		return nil, apperrors.Wrapf(err, "库存记录数据异常: product_id=%d", model.ProductID)
	}
	return &inventory.Record{
		ID:              model.ID,
		ProductID:       model.ProductID,
		Stock:           stock,
		ReorderLevel:    model.ReorderLevel,
		ReorderQuantity: model.ReorderQuantity,
		LastSoldAt:      model.LastSoldAt,
		LastRestockAt:   model.LastRestockAt,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}
