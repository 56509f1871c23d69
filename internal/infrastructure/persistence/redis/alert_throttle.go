package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/internal/domain/inventory"
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// AlertThrottle 低库存告警去重
//
// 库存低于阈值后,每次出库都会产生低库存事件。
// 同一商品在TTL窗口内只放行第一次,避免补货群里刷屏。
//
// 实现:SET key 1 NX EX ttl,写入成功表示窗口内第一次;
// 补货后调用Reset,下一次跌破阈值可以立即告警。
type AlertThrottle struct {
	client *redis.Client
	ttl    time.Duration
	next   inventory.Notifier
	log    zerolog.Logger
}

// NewAlertThrottle 包装下游Notifier,只转发窗口内的第一次事件
func NewAlertThrottle(client *redis.Client, ttl time.Duration, next inventory.Notifier, log zerolog.Logger) *AlertThrottle {
	return &AlertThrottle{client: client, ttl: ttl, next: next, log: log}
}

func alertKey(productID uint) string {
	return fmt.Sprintf("inventory:low_stock_alert:%d", productID)
}

// Allow 窗口内第一次返回true
func (a *AlertThrottle) Allow(ctx context.Context, productID uint) (bool, error) {
	ok, err := a.client.SetNX(ctx, alertKey(productID), time.Now().Unix(), a.ttl).Result()
	if err != nil {
		return false, apperrors.ErrRedisError.WithErr(err)
	}
	return ok, nil
}

// Reset 清除去重标记
func (a *AlertThrottle) Reset(ctx context.Context, productID uint) error {
	if err := a.client.Del(ctx, alertKey(productID)).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// NotifyLowStock 实现inventory.Notifier
// Redis不可用时放行(宁可重复告警也不要漏告警);
// 下游发送失败时清除标记,下一次事件重新发送
func (a *AlertThrottle) NotifyLowStock(ctx context.Context, event inventory.LowStockEvent) error {
	ok, err := a.Allow(ctx, event.ProductID)
	if err != nil {
		a.log.Warn().Err(err).Uint("product_id", event.ProductID).Msg("告警去重失败,直接放行")
		ok = true
	}
	if !ok {
		a.log.Debug().Uint("product_id", event.ProductID).Msg("低库存告警已在窗口内发送过")
		return nil
	}
	if err := a.next.NotifyLowStock(ctx, event); err != nil {
		if resetErr := a.Reset(ctx, event.ProductID); resetErr != nil {
			a.log.Warn().Err(resetErr).Uint("product_id", event.ProductID).Msg("清除告警标记失败")
			return errors.Join(err, resetErr)
		}
		return err
	}
	return nil
}

// NotifyRestocked 实现inventory.RestockObserver,补货后允许下一次告警立即发出
func (a *AlertThrottle) NotifyRestocked(ctx context.Context, productID uint) error {
	return a.Reset(ctx, productID)
}
