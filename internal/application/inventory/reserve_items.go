package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/pkg/saga"
)

// Item 购物车中的一项
type Item struct {
	ProductID uint
	Quantity  int
}

// ItemError 某个商品预留失败
// Unwrap返回原始错误,调用方仍可用errors.Is判断ErrInsufficientStock等
type ItemError struct {
	ProductID uint
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("商品%d预留失败: %v", e.ProductID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// CompensationError 释放已预留库存失败,库存停留在预留状态
type CompensationError struct {
	Errs []error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("释放预留失败(%d项): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *CompensationError) Unwrap() []error { return e.Errs }

// ReserveItems 为购物车中的多个商品预留库存
//
// 每个商品的预留是独立事务(跨商品不开大事务,避免长时间持有多行)。
// 任一商品失败时,逆序释放已经预留成功的商品,返回*ItemError。
// 释放也失败时,返回值同时包含*CompensationError(errors.Join),
// 调用方仍可用errors.As取到*ItemError,这些商品需要人工处理。
func (l *Ledger) ReserveItems(ctx context.Context, items []Item, reason string) error {
	if len(items) == 0 {
		return inventory.ErrInvalidQuantity
	}
	if reason == "" {
		reason = inventory.ReasonOrderReservation
	}

	s := saga.NewSaga(0, saga.WithLogger(l.log))
	for _, it := range items {
		s.AddStep(fmt.Sprintf("reserve:%d", it.ProductID),
			func(ctx context.Context) error {
				_, err := l.Reserve(ctx, it.ProductID, it.Quantity, reason)
				if err != nil {
					return &ItemError{ProductID: it.ProductID, Err: err}
				}
				return nil
			},
			func(ctx context.Context) error {
				_, err := l.Release(ctx, it.ProductID, it.Quantity, inventory.ReasonOrderCancelled)
				return err
			},
		)
	}

	err := s.Execute(ctx)
	if err == nil {
		return nil
	}

	var itemErr *ItemError
	if errors.As(err, &itemErr) {
		err = itemErr
	}
	if len(s.CompensationErrors) > 0 {
		return errors.Join(err, &CompensationError{Errs: s.CompensationErrors})
	}
	return err
}
