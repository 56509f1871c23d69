// Package metrics 基于Prometheus的指标收集
//
// 指标类型速查:
//   - Counter: 只增不减(操作总数、冲突次数),以_total结尾
//   - Gauge: 可增可减的瞬时值(处理中请求数、熔断器状态)
//   - Histogram: 观测值分布(操作耗时),以单位结尾(_seconds)
//
// 标签约定:
//   - 不要用product_id作为标签(基数随商品数增长)
//   - op只取有限的操作名(initialize/reserve/release/sell/restock)
//   - result只取success/failure/conflict
//
// 使用示例:
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	err := ledger.Reserve(ctx, productID, 2, "")
//	metrics.ObserveInventoryOp("reserve", err, time.Since(start))
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板,不是实际URL)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 库存业务指标

	// InventoryOperationsTotal 库存操作总数
	// 标签:op、result(success/failure/conflict)
	InventoryOperationsTotal *prometheus.CounterVec

	// InventoryOperationDuration 库存操作耗时(含重试)
	InventoryOperationDuration *prometheus.HistogramVec

	// InventoryConflictsTotal CAS冲突次数(每次重试都会计数)
	InventoryConflictsTotal *prometheus.CounterVec

	// InventoryLowStockEventsTotal 低库存事件总数
	InventoryLowStockEventsTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签:name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数,标签:result(success/failure)
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签:exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// promauto会注册到默认Registry,重复注册会panic,所以用sync.Once保护
// (测试中多个用例都会调用InitMetrics)
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	InventoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "库存操作总数",
		},
		[]string{"op", "result"},
	)

	InventoryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "inventory_operation_duration_seconds",
			Help: "库存操作耗时(秒)",
			// 单行事务通常在毫秒级,冲突重试时会拉长
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"op"},
	)

	InventoryConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_conflicts_total",
			Help: "库存并发冲突次数",
		},
		[]string{"op"},
	)

	InventoryLowStockEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_low_stock_events_total",
			Help: "低库存事件总数",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}

// 操作结果标签值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
)

// ObserveInventoryOp 记录一次库存操作的结果与耗时
// conflict=true表示重试耗尽后仍然冲突
func ObserveInventoryOp(op string, err error, conflict bool, d time.Duration) {
	InitMetrics()
	result := ResultSuccess
	switch {
	case conflict:
		result = ResultConflict
	case err != nil:
		result = ResultFailure
	}
	InventoryOperationsTotal.WithLabelValues(op, result).Inc()
	InventoryOperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// IncInventoryConflict 记录一次CAS冲突
func IncInventoryConflict(op string) {
	InitMetrics()
	InventoryConflictsTotal.WithLabelValues(op).Inc()
}

// IncLowStockEvent 记录一次低库存事件
func IncLowStockEvent() {
	InitMetrics()
	InventoryLowStockEventsTotal.Inc()
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec(带标签)
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值(带标签)
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值(带标签)
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
