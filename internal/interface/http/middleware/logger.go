package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/pkg/metrics"
	"github.com/dukamart/inventory/pkg/tracing"
)

// HeaderRequestID 请求ID响应头
const HeaderRequestID = "X-Request-ID"

// slowRequest 超过该耗时记warn日志
const slowRequest = 3 * time.Second

// Logger 请求日志中间件
//
// 1. 生成请求ID(上游传入时沿用),写入响应头
// 2. 把带request_id的logger放进request context,handler和response.Error通过zerolog.Ctx取用
// 3. 记录方法、路由、状态码、耗时,并上报HTTP指标
func Logger(base zerolog.Logger) gin.HandlerFunc {
	metrics.InitMetrics()

	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		reqLog := base.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		// 用路由模板做标签,避免/inventory/1、/inventory/2各占一个时间序列
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, latency.Seconds())

		evt := reqLog.Info()
		if latency > slowRequest {
			evt = reqLog.Warn().Bool("slow", true)
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			evt = evt.Str("trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
