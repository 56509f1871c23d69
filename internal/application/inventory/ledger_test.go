package inventory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/internal/domain/product"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql/sqlitetest"
	"github.com/dukamart/inventory/pkg/logger"
)

type recordingNotifier struct {
	mu        sync.Mutex
	events    []inventory.LowStockEvent
	restocked []uint
	err       error
}

func (n *recordingNotifier) NotifyLowStock(_ context.Context, e inventory.LowStockEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) NotifyRestocked(_ context.Context, productID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restocked = append(n.restocked, productID)
	return nil
}

func (n *recordingNotifier) lowStockEvents() []inventory.LowStockEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]inventory.LowStockEvent(nil), n.events...)
}

type fixture struct {
	ledger   *Ledger
	products product.Repository
	entries  inventory.EntryRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db := sqlitetest.New(t)
	products := mysql.NewProductRepository(db)
	entries := mysql.NewInventoryLogRepository(db)
	notifier := &recordingNotifier{}

	ledger := NewLedger(
		mysql.NewInventoryRepository(db),
		entries,
		products,
		mysql.NewTxManager(db),
		notifier,
		opts,
		logger.Nop(),
	)
	return &fixture{ledger: ledger, products: products, entries: entries, notifier: notifier}
}

// newProduct 创建商品并初始化库存
func (f *fixture) newProduct(t *testing.T, sku string, quantity int) uint {
	t.Helper()
	p, err := product.NewProduct(sku, "商品 "+sku, 10000)
	require.NoError(t, err)
	require.NoError(t, f.products.Create(context.Background(), p))

	if quantity >= 0 {
		_, err = f.ledger.Initialize(context.Background(), p.ID, InitOptions{Quantity: quantity})
		require.NoError(t, err)
	}
	return p.ID
}

func (f *fixture) view(t *testing.T, productID uint) *RecordView {
	t.Helper()
	v, err := f.ledger.Get(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func (f *fixture) entryCount(t *testing.T, productID uint) int64 {
	t.Helper()
	v := f.view(t, productID)
	n, err := f.entries.CountByInventory(context.Background(), v.Record.ID)
	require.NoError(t, err)
	return n
}

func intPtr(v int) *int { return &v }

func TestLedger_Initialize(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "MAIZE-2KG", -1)

	rec, err := f.ledger.Initialize(ctx, pid, InitOptions{Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Quantity())
	assert.Equal(t, 0, rec.Reserved())
	assert.Equal(t, 50, rec.Available())
	assert.Equal(t, inventory.DefaultReorderLevel, rec.ReorderLevel)
	assert.Equal(t, inventory.DefaultReorderQuantity, rec.ReorderQuantity)

	t.Run("重复初始化返回原记录", func(t *testing.T) {
		again, err := f.ledger.Initialize(ctx, pid, InitOptions{Quantity: 999, ReorderLevel: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, again.ID)
		assert.Equal(t, 50, again.Quantity())
		assert.Equal(t, inventory.DefaultReorderLevel, again.ReorderLevel)
		assert.Zero(t, f.entryCount(t, pid), "初始化不写流水")
	})

	t.Run("自定义补货参数", func(t *testing.T) {
		other := f.newProduct(t, "BEANS-1KG", -1)
		rec, err := f.ledger.Initialize(ctx, other, InitOptions{Quantity: 5, ReorderLevel: intPtr(3), ReorderQuantity: intPtr(20)})
		require.NoError(t, err)
		assert.Equal(t, 3, rec.ReorderLevel)
		assert.Equal(t, 20, rec.ReorderQuantity)
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := f.ledger.Initialize(ctx, 4040, InitOptions{Quantity: 1})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("负数库存", func(t *testing.T) {
		other := f.newProduct(t, "SALT-500", -1)
		_, err := f.ledger.Initialize(ctx, other, InitOptions{Quantity: -1})
		assert.ErrorIs(t, err, inventory.ErrNegativeStock)
	})
}

func TestLedger_Get(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()

	t.Run("不存在返回nil", func(t *testing.T) {
		v, err := f.ledger.Get(ctx, 12345)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	pid := f.newProduct(t, "SODA-500", 100)
	for i := 1; i <= 12; i++ {
		_, err := f.ledger.Restock(ctx, pid, i, "")
		require.NoError(t, err)
	}

	v := f.view(t, pid)
	assert.Equal(t, 100+78, v.Record.Quantity())
	require.Len(t, v.RecentEntries, RecentEntriesLimit)
	assert.Equal(t, 12, v.RecentEntries[0].QuantityChange, "最新的流水在前")
	assert.Equal(t, 3, v.RecentEntries[9].QuantityChange)
	assert.Equal(t, inventory.ReasonManualRestock, v.RecentEntries[0].Reason)
	require.NotNil(t, v.Record.LastRestockAt)
}

func TestLedger_ReserveReleaseInverse(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "FLOUR-2KG", 30)

	before := f.view(t, pid).Record

	rec, err := f.ledger.Reserve(ctx, pid, 7, "")
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Reserved())
	assert.Equal(t, 23, rec.Available())

	rec, err = f.ledger.Release(ctx, pid, 7, "")
	require.NoError(t, err)
	assert.Equal(t, before.Stock, rec.Stock)

	v := f.view(t, pid)
	require.Len(t, v.RecentEntries, 2)
	assert.Equal(t, inventory.EntryReservation, v.RecentEntries[0].Type)
	assert.Equal(t, 7, v.RecentEntries[0].QuantityChange)
	assert.Equal(t, inventory.ReasonOrderCancelled, v.RecentEntries[0].Reason)
	assert.Equal(t, -7, v.RecentEntries[1].QuantityChange)
	assert.Equal(t, inventory.ReasonOrderReservation, v.RecentEntries[1].Reason)
}

func TestLedger_RejectionsLeaveStateUnchanged(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "JUICE-1L", 5)

	_, err := f.ledger.Reserve(ctx, pid, 2, "")
	require.NoError(t, err)
	before := f.view(t, pid).Record

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"预留超过可用", func() error { _, err := f.ledger.Reserve(ctx, pid, 4, ""); return err }, inventory.ErrInsufficientStock},
		{"释放超过预留", func() error { _, err := f.ledger.Release(ctx, pid, 3, ""); return err }, inventory.ErrInvalidRelease},
		{"出库超过在库", func() error { _, err := f.ledger.Sell(ctx, pid, 6); return err }, inventory.ErrInsufficientStock},
		{"数量为0", func() error { _, err := f.ledger.Restock(ctx, pid, 0, ""); return err }, inventory.ErrInvalidQuantity},
		{"负数", func() error { _, err := f.ledger.Reserve(ctx, pid, -1, ""); return err }, inventory.ErrInvalidQuantity},
		{"记录不存在", func() error { _, err := f.ledger.Reserve(ctx, 999, 1, ""); return err }, inventory.ErrInventoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), tt.wantErr)
			after := f.view(t, pid).Record
			assert.Equal(t, before.Stock, after.Stock)
			assert.Equal(t, before.Version, after.Version)
		})
	}

	assert.Equal(t, int64(1), f.entryCount(t, pid), "失败的操作不写流水")
}

func TestLedger_Sell(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "COOKING-FAT", 40)

	_, err := f.ledger.Reserve(ctx, pid, 5, "")
	require.NoError(t, err)

	rec, err := f.ledger.Sell(ctx, pid, 5)
	require.NoError(t, err)
	assert.Equal(t, 35, rec.Quantity())
	assert.Equal(t, 0, rec.Reserved())
	assert.Equal(t, 35, rec.Available())
	require.NotNil(t, rec.LastSoldAt)

	v := f.view(t, pid)
	assert.Equal(t, inventory.EntrySale, v.RecentEntries[0].Type)
	assert.Equal(t, -5, v.RecentEntries[0].QuantityChange)
	assert.Equal(t, inventory.ReasonOrderCompleted, v.RecentEntries[0].Reason)

	t.Run("自定义原因", func(t *testing.T) {
		_, err := f.ledger.Sell(ctx, pid, 1, WithSaleReason("POS_WALK_IN"))
		require.NoError(t, err)
		assert.Equal(t, "POS_WALK_IN", f.view(t, pid).RecentEntries[0].Reason)
	})
}

func TestLedger_UnreservedSalePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("默认允许直售", func(t *testing.T) {
		f := newFixture(t, DefaultOptions())
		pid := f.newProduct(t, "SOAP-BAR", 20)
		_, err := f.ledger.Reserve(ctx, pid, 2, "")
		require.NoError(t, err)

		rec, err := f.ledger.Sell(ctx, pid, 5)
		require.NoError(t, err)
		assert.Equal(t, 15, rec.Quantity())
		assert.Equal(t, 0, rec.Reserved())
	})

	t.Run("配置禁止直售", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AllowUnreservedSale = false
		f := newFixture(t, opts)
		pid := f.newProduct(t, "SOAP-BAR", 20)
		_, err := f.ledger.Reserve(ctx, pid, 2, "")
		require.NoError(t, err)

		_, err = f.ledger.Sell(ctx, pid, 5)
		assert.ErrorIs(t, err, inventory.ErrUnreservedSale)

		// 单次调用覆盖配置
		rec, err := f.ledger.Sell(ctx, pid, 5, WithUnreservedSale(true))
		require.NoError(t, err)
		assert.Equal(t, 15, rec.Quantity())
	})
}

func TestLedger_LowStockEvent(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "TOMATO-1KG", 12)

	_, err := f.ledger.Sell(ctx, pid, 1)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.lowStockEvents(), "available=11 > reorder_level=10")

	_, err = f.ledger.Sell(ctx, pid, 1)
	require.NoError(t, err)
	events := f.notifier.lowStockEvents()
	require.Len(t, events, 1)
	assert.Equal(t, pid, events[0].ProductID)
	assert.Equal(t, 10, events[0].Available)
	assert.Equal(t, 10, events[0].ReorderLevel)
	assert.Equal(t, inventory.DefaultReorderQuantity, events[0].ReorderQuantity)

	t.Run("预留也会降低可用数量", func(t *testing.T) {
		_, err := f.ledger.Reserve(ctx, pid, 5, "")
		require.NoError(t, err)
		assert.Len(t, f.notifier.lowStockEvents(), 1, "只有出库会触发通知")

		_, err = f.ledger.Sell(ctx, pid, 1)
		require.NoError(t, err)
		events := f.notifier.lowStockEvents()
		require.Len(t, events, 2)
		assert.Equal(t, 9, events[1].Quantity)
		assert.Equal(t, 4, events[1].Reserved)
		assert.Equal(t, 5, events[1].Available)
	})

	t.Run("通知失败不影响出库", func(t *testing.T) {
		f.notifier.err = errors.New("mq down")
		rec, err := f.ledger.Sell(ctx, pid, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, rec.Quantity())
	})

	t.Run("补货恢复后回调", func(t *testing.T) {
		_, err := f.ledger.Restock(ctx, pid, 50, "")
		require.NoError(t, err)
		assert.Equal(t, []uint{pid}, f.notifier.restocked)
	})
}

func TestLedger_ListLowStock(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()

	f.newProduct(t, "PLENTY", 100)
	low := f.newProduct(t, "LOW", 8)
	empty := f.newProduct(t, "EMPTY", 0)

	items, err := f.ledger.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, empty, items[0].Record.ProductID)
	assert.Equal(t, low, items[1].Record.ProductID)
	assert.Equal(t, "LOW", items[1].SKU)
}

// 50个并发请求各预留1件,可用数量只有10件
// 单连接SQLite下事务会排队执行,这里只校验计数结果;版本冲突的交错场景见TestLedger_InterleavedReserveConflict
func TestLedger_ConcurrentReserve(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	pid := f.newProduct(t, "FLASH-SALE", 10)

	var ok, insufficient, other atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Reserve(ctx, pid, 1, "")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, inventory.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(40), insufficient.Load())
	assert.Zero(t, other.Load())

	rec := f.view(t, pid).Record
	assert.Equal(t, 10, rec.Reserved())
	assert.Equal(t, 0, rec.Available())
	assert.Equal(t, int64(10), f.entryCount(t, pid))
}

// 随机操作序列后:不变式成立,流水条数等于成功操作数,流水可以重建在库总数
func TestLedger_AuditTrailCompleteness(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	const initial = 20
	pid := f.newProduct(t, "RANDOM", initial)

	rng := rand.New(rand.NewSource(7))
	succeeded := 0
	restocked, sold := 0, 0
	for i := 0; i < 60; i++ {
		n := rng.Intn(6) + 1
		var err error
		switch rng.Intn(4) {
		case 0:
			_, err = f.ledger.Reserve(ctx, pid, n, "")
		case 1:
			_, err = f.ledger.Release(ctx, pid, n, "")
		case 2:
			_, err = f.ledger.Sell(ctx, pid, n)
			if err == nil {
				sold += n
			}
		case 3:
			_, err = f.ledger.Restock(ctx, pid, n, "")
			if err == nil {
				restocked += n
			}
		}
		if err == nil {
			succeeded++
		}

		rec := f.view(t, pid).Record
		require.GreaterOrEqual(t, rec.Reserved(), 0)
		require.LessOrEqual(t, rec.Reserved(), rec.Quantity())
		require.Equal(t, rec.Quantity()-rec.Reserved(), rec.Available())
	}

	assert.Equal(t, int64(succeeded), f.entryCount(t, pid))
	assert.Equal(t, initial+restocked-sold, f.view(t, pid).Record.Quantity())
}

func TestLedger_ReserveItems(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ctx := context.Background()
	a := f.newProduct(t, "CART-A", 10)
	b := f.newProduct(t, "CART-B", 10)
	c := f.newProduct(t, "CART-C", 1)

	t.Run("全部成功", func(t *testing.T) {
		err := f.ledger.ReserveItems(ctx, []Item{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 3}}, "")
		require.NoError(t, err)
		assert.Equal(t, 2, f.view(t, a).Record.Reserved())
		assert.Equal(t, 3, f.view(t, b).Record.Reserved())
	})

	t.Run("失败时释放已预留的商品", func(t *testing.T) {
		err := f.ledger.ReserveItems(ctx, []Item{
			{ProductID: a, Quantity: 1},
			{ProductID: b, Quantity: 1},
			{ProductID: c, Quantity: 5},
		}, "ORDER-1001")
		require.Error(t, err)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

		var itemErr *ItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, c, itemErr.ProductID)

		assert.Equal(t, 2, f.view(t, a).Record.Reserved(), "回到之前的预留数量")
		assert.Equal(t, 3, f.view(t, b).Record.Reserved())
		assert.Equal(t, 0, f.view(t, c).Record.Reserved())

		latest := f.view(t, a).RecentEntries[0]
		assert.Equal(t, 1, latest.QuantityChange)
		assert.Equal(t, inventory.ReasonOrderCancelled, latest.Reason)
	})

	t.Run("空购物车", func(t *testing.T) {
		assert.ErrorIs(t, f.ledger.ReserveItems(ctx, nil, ""), inventory.ErrInvalidQuantity)
	})
}

func TestLedger_TimeoutFromContext(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	pid := f.newProduct(t, "CTX", 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := f.ledger.Reserve(ctx, pid, 1, "")
	require.Error(t, err)
	assert.Equal(t, 10, f.view(t, pid).Record.Available())
}
