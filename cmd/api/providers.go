package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	appinventory "github.com/dukamart/inventory/internal/application/inventory"
	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/internal/infrastructure/config"
	"github.com/dukamart/inventory/internal/infrastructure/messaging"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/redis"
	grpcserver "github.com/dukamart/inventory/internal/interface/grpc"
	"github.com/dukamart/inventory/internal/interface/http/handler"
	"github.com/dukamart/inventory/internal/interface/http/middleware"
	"github.com/dukamart/inventory/internal/interface/http/router"
	"github.com/dukamart/inventory/pkg/circuitbreaker"
	"github.com/dukamart/inventory/pkg/jwt"
	"github.com/dukamart/inventory/pkg/mq"
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 构造函数的参数不能直接由Wire推导(需要从Config提取字段、需要cleanup)时,
// 在这里写一个Provider包装一下

// provideDB 数据库连接,cleanup关闭连接池
func provideDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis Redis连接,cleanup关闭连接
func provideRedis(cfg *config.Config, log zerolog.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire)
}

// provideNotifier 组装低库存通知链
//
//	AlertThrottle(Redis去重) → Notifiers{LogNotifier, LowStockPublisher(RabbitMQ,可选)}
//
// rabbitmq.enabled=false时只写日志
func provideNotifier(cfg *config.Config, client *goredis.Client, log zerolog.Logger) (inventory.Notifier, func(), error) {
	fanout := appinventory.Notifiers{appinventory.NewLogNotifier(log)}
	cleanup := func() {}

	if cfg.RabbitMQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ExchangeType, log)
		if err != nil {
			return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
		}
		breaker := circuitbreaker.NewCircuitBreaker("rabbitmq-low-stock", circuitbreaker.DefaultConfig())
		breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
		})
		fanout = append(fanout, messaging.NewLowStockPublisher(publisher, breaker, uuid.NewString, log))
		cleanup = func() { _ = publisher.Close() }
	}

	return redis.NewAlertThrottle(client, cfg.Inventory.AlertTTL, fanout, log), cleanup, nil
}

// provideRouter 创建并配置Gin引擎
func provideRouter(
	cfg *config.Config,
	log zerolog.Logger,
	inventoryHandler *handler.InventoryHandler,
	productHandler *handler.ProductHandler,
	auth *middleware.AuthMiddleware,
) *gin.Engine {
	return router.New(
		router.Options{
			Mode:          cfg.Server.Mode,
			EnableSwagger: cfg.Server.Mode != gin.ReleaseMode,
			CORS:          cfg.CORS,
		},
		log,
		inventoryHandler,
		productHandler,
		auth,
	)
}

// App HTTP + gRPC两个服务
type App struct {
	cfg  *config.Config
	http *http.Server
	grpc *grpcserver.Server
	log  zerolog.Logger
}

func newApp(cfg *config.Config, engine *gin.Engine, grpcServer *grpcserver.Server, log zerolog.Logger) *App {
	return &App{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		grpc: grpcServer,
		log:  log,
	}
}

// Run 启动两个服务,任一服务异常退出时返回错误
func (a *App) Run() <-chan error {
	errCh := make(chan error, 2)

	go func() {
		a.log.Info().Str("addr", a.http.Addr).Msg("HTTP服务启动")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP服务异常退出: %w", err)
		}
	}()

	go func() {
		if err := a.grpc.ListenAndServe(a.cfg.Server.GRPCPort); err != nil {
			errCh <- fmt.Errorf("gRPC服务异常退出: %w", err)
		}
	}()
	a.grpc.SetServing()

	return errCh
}

// Shutdown 优雅关闭
// 1. 健康检查先切到NOT_SERVING,负载均衡摘流
// 2. HTTP停止接收新请求,等待处理中的请求完成
func (a *App) Shutdown(ctx context.Context) error {
	a.grpc.Shutdown(ctx)
	return a.http.Shutdown(ctx)
}
