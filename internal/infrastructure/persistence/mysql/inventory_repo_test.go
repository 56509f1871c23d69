package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/internal/domain/product"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql/sqlitetest"
)

type repos struct {
	db        *gorm.DB
	products  product.Repository
	inventory inventory.Repository
	logs      inventory.EntryRepository
	tx        *mysql.TxManager
}

func setup(t *testing.T) repos {
	db := sqlitetest.New(t)
	return repos{
		db:        db,
		products:  mysql.NewProductRepository(db),
		inventory: mysql.NewInventoryRepository(db),
		logs:      mysql.NewInventoryLogRepository(db),
		tx:        mysql.NewTxManager(db),
	}
}

func (r repos) seed(t *testing.T, sku string, price int64, quantity, reorderLevel int) *inventory.Record {
	t.Helper()
	ctx := context.Background()

	p, err := product.NewProduct(sku, "商品 "+sku, price)
	require.NoError(t, err)
	require.NoError(t, r.products.Create(ctx, p))

	rec, err := inventory.NewRecord(p.ID, quantity, reorderLevel, inventory.DefaultReorderQuantity)
	require.NoError(t, err)
	require.NoError(t, r.inventory.Create(ctx, rec))
	return rec
}

func TestInventoryRepository_CreateAndFind(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	rec := r.seed(t, "UNGA-2KG", 21000, 40, 10)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, uint(1), rec.Version)

	got, err := r.inventory.FindByProductID(ctx, rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Quantity())
	assert.Equal(t, 0, got.Reserved())
	assert.Equal(t, 10, got.ReorderLevel)
	assert.Equal(t, inventory.DefaultReorderQuantity, got.ReorderQuantity)
	assert.Nil(t, got.LastSoldAt)

	t.Run("不存在", func(t *testing.T) {
		_, err := r.inventory.FindByProductID(ctx, 9999)
		assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
	})

	t.Run("同一商品重复创建", func(t *testing.T) {
		dup, err := inventory.NewRecord(rec.ProductID, 5, 10, 50)
		require.NoError(t, err)
		assert.ErrorIs(t, r.inventory.Create(ctx, dup), inventory.ErrRecordExists)
	})
}

func TestInventoryRepository_CompareAndSwap(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	rec := r.seed(t, "SUGAR-1KG", 16000, 20, 10)

	next, err := rec.Stock.Reserve(5)
	require.NoError(t, err)
	soldAt := time.Now()
	updated := rec.Apply(next, soldAt)
	updated.LastSoldAt = &soldAt

	require.NoError(t, r.inventory.CompareAndSwap(ctx, rec.Version, updated))
	assert.Equal(t, uint(2), updated.Version)

	got, err := r.inventory.FindByProductID(ctx, rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Reserved())
	assert.Equal(t, 15, got.Available())
	assert.Equal(t, uint(2), got.Version)
	require.NotNil(t, got.LastSoldAt)

	t.Run("旧版本号写入冲突", func(t *testing.T) {
		stale := rec.Apply(next, time.Now())
		err := r.inventory.CompareAndSwap(ctx, rec.Version, stale)
		assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)

		after, err := r.inventory.FindByProductID(ctx, rec.ProductID)
		require.NoError(t, err)
		assert.Equal(t, got.Stock, after.Stock, "冲突时不应修改数据")
	})
}

func TestInventoryRepository_ListLowStock(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	r.seed(t, "MILK-500", 6500, 25, 10)  // 充足
	r.seed(t, "BREAD-400", 6000, 10, 10) // 恰好等于阈值
	r.seed(t, "EGGS-30", 45000, 3, 5)
	r.seed(t, "SALT-1KG", 3000, 0, 10)

	items, err := r.inventory.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "SALT-1KG", items[0].SKU)
	assert.Equal(t, 0, items[0].Record.Quantity())
	assert.Equal(t, "EGGS-30", items[1].SKU)
	assert.Equal(t, int64(45000), items[1].Price)
	assert.Equal(t, "BREAD-400", items[2].SKU)
	assert.Equal(t, "商品 BREAD-400", items[2].ProductName)
}

func TestInventoryLogRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	rec := r.seed(t, "RICE-5KG", 95000, 100, 10)

	base := time.Now()
	for i := 1; i <= 12; i++ {
		e := inventory.NewEntry(rec, inventory.EntryRestock, i, inventory.ReasonManualRestock, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, r.logs.Append(ctx, e))
		assert.NotZero(t, e.ID)
	}

	total, err := r.logs.CountByInventory(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	recent, err := r.logs.ListRecent(ctx, rec.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, 12, recent[0].QuantityChange, "最新的在前")
	assert.Equal(t, 3, recent[9].QuantityChange)
	assert.Equal(t, inventory.EntryRestock, recent[0].Type)
	assert.Equal(t, rec.ProductID, recent[0].ProductID)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	rec := r.seed(t, "OIL-1L", 35000, 10, 2)

	boom := errors.New("append failed")
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		next, err := rec.Stock.Restock(5)
		if err != nil {
			return err
		}
		if err := r.inventory.CompareAndSwap(ctx, rec.Version, rec.Apply(next, time.Now())); err != nil {
			return err
		}
		if err := r.logs.Append(ctx, inventory.NewEntry(rec, inventory.EntryRestock, 5, "", time.Now())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.inventory.FindByProductID(ctx, rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity(), "事务回滚后计数不变")
	assert.Equal(t, uint(1), got.Version)

	total, err := r.logs.CountByInventory(ctx, rec.ID)
	require.NoError(t, err)
	assert.Zero(t, total, "事务回滚后不应留下流水")
}

func TestProductRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	p, err := product.NewProduct("tea-250", "Kericho Gold 250g", 27500)
	require.NoError(t, err)
	require.NoError(t, r.products.Create(ctx, p))

	got, err := r.products.FindBySKU(ctx, "TEA-250")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	byID, err := r.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kericho Gold 250g", byID.Name)

	dup, err := product.NewProduct("TEA-250", "dup", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, r.products.Create(ctx, dup), product.ErrSKUDuplicate)

	_, err = r.products.FindByID(ctx, 404)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}
