package inventory

import (
	"context"
	"errors"
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

// interleavedRecords 前两次读取互相等待,两个请求拿到同一个版本号后才继续写入
type interleavedRecords struct {
	inventory.Repository

	mu        sync.Mutex
	reads     int
	both      chan struct{}
	casCalls  atomic.Int32
	conflicts atomic.Int32
}

func newInterleavedRecords(inner inventory.Repository) *interleavedRecords {
	return &interleavedRecords{Repository: inner, both: make(chan struct{})}
}

func (r *interleavedRecords) FindByProductID(ctx context.Context, productID uint) (*inventory.Record, error) {
	rec, err := r.Repository.FindByProductID(ctx, productID)

	r.mu.Lock()
	r.reads++
	n := r.reads
	if n == 2 {
		close(r.both)
	}
	r.mu.Unlock()

	if n <= 2 {
		select {
		case <-r.both:
		case <-time.After(2 * time.Second):
		}
	}
	return rec, err
}

func (r *interleavedRecords) CompareAndSwap(ctx context.Context, expected uint, next *inventory.Record) error {
	r.casCalls.Add(1)
	err := r.Repository.CompareAndSwap(ctx, expected, next)
	if errors.Is(err, inventory.ErrConcurrencyConflict) {
		r.conflicts.Add(1)
	}
	return err
}

// 两个预留请求读到同一版本:一个写入成功,另一个版本冲突后重读重试
func TestLedger_InterleavedReserveConflict(t *testing.T) {
	db := sqlitetest.New(t)
	ctx := context.Background()

	products := mysql.NewProductRepository(db)
	p, err := product.NewProduct("RACE-1", "商品 RACE-1", 5000)
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, p))

	base := mysql.NewInventoryRepository(db)
	rec, err := inventory.NewRecord(p.ID, 10, inventory.DefaultReorderLevel, inventory.DefaultReorderQuantity)
	require.NoError(t, err)
	require.NoError(t, base.Create(ctx, rec))
	startVersion := rec.Version

	opts := DefaultOptions()
	opts.RetryBackoff = time.Millisecond
	records := newInterleavedRecords(base)
	entries := mysql.NewInventoryLogRepository(db)
	// 不开事务:两个请求的读取和写入可以在同一个连接上交错
	l := NewLedger(records, entries, products, noTx{}, nil, opts, logger.Nop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = l.Reserve(ctx, p.ID, 1, "")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), records.conflicts.Load(), "第二个写入必须因版本号过期而失败")
	assert.Equal(t, int32(3), records.casCalls.Load(), "冲突的一方重试一次")

	got, err := base.FindByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Reserved(), "两次预留都生效,没有丢失更新")
	assert.Equal(t, 8, got.Available())
	assert.Equal(t, startVersion+2, got.Version)

	n, err := entries.CountByInventory(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

var errDBDown = errors.New("db down")

// releaseFailsRecords 第一次写入成功,之后的写入全部失败
type releaseFailsRecords struct {
	*flakyRecords
	writes int
}

func (r *releaseFailsRecords) CompareAndSwap(ctx context.Context, expected uint, next *inventory.Record) error {
	r.writes++
	if r.writes > 1 {
		return errDBDown
	}
	return r.flakyRecords.CompareAndSwap(ctx, expected, next)
}

func TestLedger_ReserveItemsCompensationFailure(t *testing.T) {
	rec, err := inventory.NewRecord(1, 10, inventory.DefaultReorderLevel, inventory.DefaultReorderQuantity)
	require.NoError(t, err)
	rec.ID = 1
	records := &releaseFailsRecords{flakyRecords: &flakyRecords{rec: rec}}
	l := NewLedger(records, &memEntries{}, nopProducts{}, noTx{}, nil, DefaultOptions(), logger.Nop())

	// 商品2没有库存记录,预留失败;回滚商品1时写入失败
	err = l.ReserveItems(context.Background(), []Item{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}, "")
	require.Error(t, err)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, uint(2), itemErr.ProductID)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)

	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr, "释放失败必须返回给调用方")
	assert.Len(t, compErr.Errs, 1)
	assert.ErrorIs(t, err, errDBDown)

	cur, err := records.FindByProductID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cur.Reserved(), "释放失败,预留仍然存在")
}
