// Package messaging 把库存领域事件发布到RabbitMQ
package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/pkg/circuitbreaker"
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// RoutingKeyLowStock 低库存事件的routing key
const RoutingKeyLowStock = "inventory.low_stock"

// EventPublisher 消息发布接口(*mq.Publisher实现)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// LowStockMessage 消息体
// 采购系统按product_id合并补货单,reorder_quantity是建议补货量
type LowStockMessage struct {
	EventID         string    `json:"event_id"`
	ProductID       uint      `json:"product_id"`
	Quantity        int       `json:"quantity"`
	Reserved        int       `json:"reserved"`
	Available       int       `json:"available"`
	ReorderLevel    int       `json:"reorder_level"`
	ReorderQuantity int       `json:"reorder_quantity"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// LowStockPublisher 低库存事件发布者
// 通过熔断器调用RabbitMQ:MQ故障时快速失败,不拖慢出库请求
type LowStockPublisher struct {
	publisher EventPublisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
	newID     func() string
	log       zerolog.Logger
}

// NewLowStockPublisher 创建低库存事件发布者
func NewLowStockPublisher(publisher EventPublisher, breaker *circuitbreaker.CircuitBreaker, newID func() string, log zerolog.Logger) *LowStockPublisher {
	return &LowStockPublisher{
		publisher: publisher,
		breaker:   breaker,
		timeout:   2 * time.Second,
		newID:     newID,
		log:       log,
	}
}

// NotifyLowStock 实现inventory.Notifier
func (p *LowStockPublisher) NotifyLowStock(ctx context.Context, event inventory.LowStockEvent) error {
	msg := LowStockMessage{
		EventID:         p.newID(),
		ProductID:       event.ProductID,
		Quantity:        event.Quantity,
		Reserved:        event.Reserved,
		Available:       event.Available,
		ReorderLevel:    event.ReorderLevel,
		ReorderQuantity: event.ReorderQuantity,
		OccurredAt:      event.OccurredAt,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return p.publisher.Publish(ctx, RoutingKeyLowStock, msg)
	})
	if err != nil {
		return apperrors.New(apperrors.ErrCodeMQError, "发布低库存事件失败").WithErr(err)
	}

	p.log.Info().
		Str("event_id", msg.EventID).
		Uint("product_id", msg.ProductID).
		Int("available", msg.Available).
		Msg("低库存事件已发布")
	return nil
}
