package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/pkg/metrics"
)

// notifyTimeout 通知在事务提交之后执行,使用独立的超时,不受请求剩余时间影响
const notifyTimeout = 3 * time.Second

// Notifiers 低库存通知扇出,依次调用所有Notifier
type Notifiers []inventory.Notifier

// NotifyLowStock 一个Notifier失败不影响其他Notifier
func (ns Notifiers) NotifyLowStock(ctx context.Context, event inventory.LowStockEvent) error {
	var errs []error
	for _, n := range ns {
		if err := n.NotifyLowStock(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyRestocked 转发给实现了RestockObserver的Notifier
func (ns Notifiers) NotifyRestocked(ctx context.Context, productID uint) error {
	var errs []error
	for _, n := range ns {
		if o, ok := n.(inventory.RestockObserver); ok {
			if err := o.NotifyRestocked(ctx, productID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// LogNotifier 低库存写一条warn日志
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier 创建日志通知
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyLowStock(_ context.Context, e inventory.LowStockEvent) error {
	n.log.Warn().
		Uint("product_id", e.ProductID).
		Int("quantity", e.Quantity).
		Int("reserved", e.Reserved).
		Int("available", e.Available).
		Int("reorder_level", e.ReorderLevel).
		Int("reorder_quantity", e.ReorderQuantity).
		Msg("库存低于补货阈值")
	return nil
}

func (l *Ledger) notifyLowStock(ctx context.Context, rec *inventory.Record) {
	metrics.IncLowStockEvent()
	if l.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := l.notifier.NotifyLowStock(ctx, rec.LowStockEvent(l.now())); err != nil {
		l.log.Error().Err(err).Uint("product_id", rec.ProductID).Msg("低库存通知失败")
	}
}

func (l *Ledger) notifyRestocked(ctx context.Context, productID uint) {
	o, ok := l.notifier.(inventory.RestockObserver)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := o.NotifyRestocked(ctx, productID); err != nil {
		l.log.Warn().Err(err).Uint("product_id", productID).Msg("补货通知失败")
	}
}
