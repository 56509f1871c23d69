// Package inventory 库存账本用例
//
// 所有计数变更都走同一条路径(mutate):
//
//	开启事务 -> 读取记录 -> Stock值对象计算新计数 -> CompareAndSwap(version) -> 追加流水 -> 提交
//
// CompareAndSwap影响0行说明并发请求先一步修改了记录,整个事务回滚后重新读取再试,
// 重试次数和退避由inventory.max_retries / inventory.retry_backoff控制。
package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/internal/domain/product"
	"github.com/dukamart/inventory/internal/infrastructure/config"
	apperrors "github.com/dukamart/inventory/pkg/errors"
	"github.com/dukamart/inventory/pkg/metrics"
	"github.com/dukamart/inventory/pkg/tracing"
)

// RecentEntriesLimit Get返回的最近流水条数
const RecentEntriesLimit = 10

const tracerName = "inventory"

// TxManager 事务管理(*mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options 账本参数
type Options struct {
	MaxRetries          int
	RetryBackoff        time.Duration
	OpTimeout           time.Duration
	AllowUnreservedSale bool
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		MaxRetries:          5,
		RetryBackoff:        10 * time.Millisecond,
		OpTimeout:           5 * time.Second,
		AllowUnreservedSale: true,
	}
}

// NewOptions 从配置构造账本参数
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxRetries:          cfg.Inventory.MaxRetries,
		RetryBackoff:        cfg.Inventory.RetryBackoff,
		OpTimeout:           cfg.Inventory.OpTimeout,
		AllowUnreservedSale: cfg.Inventory.AllowUnreservedSale,
	}
}

// Ledger 库存账本
type Ledger struct {
	records  inventory.Repository
	entries  inventory.EntryRepository
	products product.Repository
	tx       TxManager
	notifier inventory.Notifier
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// NewLedger 创建库存账本
// notifier可以为nil(不发送低库存通知)
func NewLedger(
	records inventory.Repository,
	entries inventory.EntryRepository,
	products product.Repository,
	tx TxManager,
	notifier inventory.Notifier,
	opts Options,
	log zerolog.Logger,
) *Ledger {
	def := DefaultOptions()
	if opts.MaxRetries < 1 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = def.OpTimeout
	}
	return &Ledger{
		records:  records,
		entries:  entries,
		products: products,
		tx:       tx,
		notifier: notifier,
		opts:     opts,
		log:      log.With().Str("component", "ledger").Logger(),
		now:      time.Now,
	}
}

// InitOptions 初始化参数,ReorderLevel/ReorderQuantity为nil时使用默认值(10/50)
type InitOptions struct {
	Quantity        int
	ReorderLevel    *int
	ReorderQuantity *int
}

// RecordView 库存记录及最近流水
type RecordView struct {
	Record        *inventory.Record
	RecentEntries []*inventory.Entry
}

// Initialize 为商品创建库存记录(幂等)
//
// 已存在时原样返回,不修改计数、不写流水。
// 两个请求同时创建时,唯一索引冲突的一方重新读取已创建的记录。
func (l *Ledger) Initialize(ctx context.Context, productID uint, opts InitOptions) (rec *inventory.Record, err error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.OpTimeout)
	defer cancel()
	ctx, span := l.startSpan(ctx, "Initialize", productID, opts.Quantity)
	start := time.Now()
	defer func() {
		tracing.EndSpan(span, err)
		metrics.ObserveInventoryOp("initialize", err, false, time.Since(start))
	}()

	if _, err := l.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := l.records.FindByProductID(ctx, productID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, inventory.ErrInventoryNotFound) {
		return nil, err
	}

	level := inventory.DefaultReorderLevel
	if opts.ReorderLevel != nil {
		level = *opts.ReorderLevel
	}
	reorderQty := inventory.DefaultReorderQuantity
	if opts.ReorderQuantity != nil {
		reorderQty = *opts.ReorderQuantity
	}

	rec, err = inventory.NewRecord(productID, opts.Quantity, level, reorderQty)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = l.now()
	rec.UpdatedAt = rec.CreatedAt

	if err := l.records.Create(ctx, rec); err != nil {
		if errors.Is(err, inventory.ErrRecordExists) {
			return l.records.FindByProductID(ctx, productID)
		}
		return nil, err
	}

	l.log.Info().Uint("product_id", productID).Int("quantity", opts.Quantity).Msg("库存记录已创建")
	return rec, nil
}

// Get 查询库存记录和最近10条流水(按时间倒序)
// 记录不存在时返回nil, nil
func (l *Ledger) Get(ctx context.Context, productID uint) (*RecordView, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.OpTimeout)
	defer cancel()

	rec, err := l.records.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, inventory.ErrInventoryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := l.entries.ListRecent(ctx, rec.ID, RecentEntriesLimit)
	if err != nil {
		return nil, err
	}
	return &RecordView{Record: rec, RecentEntries: entries}, nil
}

// Reserve 预留库存,流水:RESERVATION -qty
func (l *Ledger) Reserve(ctx context.Context, productID uint, qty int, reason string) (*inventory.Record, error) {
	if reason == "" {
		reason = inventory.ReasonOrderReservation
	}
	return l.mutate(ctx, "reserve", productID, qty, func(rec *inventory.Record, now time.Time) (*inventory.Record, *inventory.Entry, error) {
		next, err := rec.Stock.Reserve(qty)
		if err != nil {
			return nil, nil, err
		}
		return rec.Apply(next, now), inventory.NewEntry(rec, inventory.EntryReservation, -qty, reason, now), nil
	})
}

// Release 释放预留,流水:RESERVATION +qty
func (l *Ledger) Release(ctx context.Context, productID uint, qty int, reason string) (*inventory.Record, error) {
	if reason == "" {
		reason = inventory.ReasonOrderCancelled
	}
	return l.mutate(ctx, "release", productID, qty, func(rec *inventory.Record, now time.Time) (*inventory.Record, *inventory.Entry, error) {
		next, err := rec.Stock.Release(qty)
		if err != nil {
			return nil, nil, err
		}
		return rec.Apply(next, now), inventory.NewEntry(rec, inventory.EntryReservation, qty, reason, now), nil
	})
}

// SellOption 出库选项
type SellOption func(*sellOptions)

type sellOptions struct {
	allowUnreserved bool
	reason          string
}

// WithUnreservedSale 覆盖配置中的allow_unreserved_sale
func WithUnreservedSale(allow bool) SellOption {
	return func(o *sellOptions) { o.allowUnreserved = allow }
}

// WithSaleReason 自定义出库原因(默认ORDER_COMPLETED)
func WithSaleReason(reason string) SellOption {
	return func(o *sellOptions) {
		if reason != "" {
			o.reason = reason
		}
	}
}

// Sell 出库,流水:SALE -qty
//
// 先扣减预留,超出预留的部分是否允许由AllowUnreservedSale决定。
// 提交后可用数量 <= 补货阈值时发送低库存通知,通知失败不影响出库结果。
func (l *Ledger) Sell(ctx context.Context, productID uint, qty int, opts ...SellOption) (*inventory.Record, error) {
	so := sellOptions{allowUnreserved: l.opts.AllowUnreservedSale, reason: inventory.ReasonOrderCompleted}
	for _, opt := range opts {
		opt(&so)
	}

	rec, err := l.mutate(ctx, "sell", productID, qty, func(rec *inventory.Record, now time.Time) (*inventory.Record, *inventory.Entry, error) {
		next, err := rec.Stock.Sell(qty, so.allowUnreserved)
		if err != nil {
			return nil, nil, err
		}
		updated := rec.Apply(next, now)
		updated.LastSoldAt = &now
		return updated, inventory.NewEntry(rec, inventory.EntrySale, -qty, so.reason, now), nil
	})
	if err != nil {
		return nil, err
	}

	if rec.IsLowStock() {
		l.notifyLowStock(ctx, rec)
	}
	return rec, nil
}

// Restock 补货,流水:RESTOCK +qty
func (l *Ledger) Restock(ctx context.Context, productID uint, qty int, reason string) (*inventory.Record, error) {
	if reason == "" {
		reason = inventory.ReasonManualRestock
	}
	rec, err := l.mutate(ctx, "restock", productID, qty, func(rec *inventory.Record, now time.Time) (*inventory.Record, *inventory.Entry, error) {
		next, err := rec.Stock.Restock(qty)
		if err != nil {
			return nil, nil, err
		}
		updated := rec.Apply(next, now)
		updated.LastRestockAt = &now
		return updated, inventory.NewEntry(rec, inventory.EntryRestock, qty, reason, now), nil
	})
	if err != nil {
		return nil, err
	}

	if !rec.IsLowStock() {
		l.notifyRestocked(ctx, rec.ProductID)
	}
	return rec, nil
}

// ListLowStock 在库总数 <= 补货阈值的商品,按在库总数升序
func (l *Ledger) ListLowStock(ctx context.Context) ([]*inventory.LowStockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.OpTimeout)
	defer cancel()
	return l.records.ListLowStock(ctx)
}

// mutation 基于当前记录计算新记录和流水,不访问数据库
type mutation func(rec *inventory.Record, now time.Time) (*inventory.Record, *inventory.Entry, error)

// mutate 在事务中执行一次计数变更,并发冲突时整体重试
func (l *Ledger) mutate(ctx context.Context, op string, productID uint, qty int, fn mutation) (result *inventory.Record, err error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.OpTimeout)
	defer cancel()
	ctx, span := l.startSpan(ctx, op, productID, qty)

	start := time.Now()
	exhausted := false
	defer func() {
		tracing.EndSpan(span, err)
		metrics.ObserveInventoryOp(op, err, exhausted, time.Since(start))
	}()

	if qty <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	for attempt := 1; attempt <= l.opts.MaxRetries; attempt++ {
		result, err = l.attempt(ctx, productID, fn)
		if err == nil {
			l.log.Debug().
				Str("op", op).
				Uint("product_id", productID).
				Int("qty", qty).
				Int("quantity", result.Quantity()).
				Int("reserved", result.Reserved()).
				Int("attempt", attempt).
				Msg("库存已更新")
			return result, nil
		}
		if !inventory.IsRetryable(err) {
			return nil, translateCtxErr(ctx, err)
		}

		metrics.IncInventoryConflict(op)
		span.AddEvent("conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
		l.log.Debug().Str("op", op).Uint("product_id", productID).Int("attempt", attempt).Msg("库存并发冲突,准备重试")

		if attempt == l.opts.MaxRetries {
			break
		}
		// 线性退避:第1次重试等待1*backoff,第2次2*backoff ...
		if err := sleepCtx(ctx, time.Duration(attempt)*l.opts.RetryBackoff); err != nil {
			return nil, apperrors.ErrTimeout.WithErr(err)
		}
	}

	exhausted = true
	l.log.Warn().Str("op", op).Uint("product_id", productID).Int("retries", l.opts.MaxRetries).Msg("库存并发冲突,重试次数已用完")
	return nil, inventory.ErrConcurrencyConflict
}

// attempt 一次完整的读-算-写事务
func (l *Ledger) attempt(ctx context.Context, productID uint, fn mutation) (*inventory.Record, error) {
	var result *inventory.Record
	err := l.tx.Transaction(ctx, func(ctx context.Context) error {
		rec, err := l.records.FindByProductID(ctx, productID)
		if err != nil {
			return err
		}

		next, entry, err := fn(rec, l.now())
		if err != nil {
			return err
		}

		if err := l.records.CompareAndSwap(ctx, rec.Version, next); err != nil {
			return err
		}
		if err := l.entries.Append(ctx, entry); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// translateCtxErr 超时或取消导致的数据库错误统一返回ErrTimeout,业务错误原样返回
func translateCtxErr(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	if apperrors.IsAppError(err) && apperrors.CodeOf(err) < 50000 {
		return err
	}
	return apperrors.ErrTimeout.WithErr(err)
}

func (l *Ledger) startSpan(ctx context.Context, op string, productID uint, qty int) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, tracerName, "Ledger."+op,
		trace.WithAttributes(
			attribute.Int64("inventory.product_id", int64(productID)),
			attribute.Int("inventory.qty", qty),
		),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
