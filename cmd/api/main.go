package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/dukamart/inventory/docs"
	"github.com/dukamart/inventory/internal/infrastructure/config"
	"github.com/dukamart/inventory/pkg/logger"
	"github.com/dukamart/inventory/pkg/metrics"
	"github.com/dukamart/inventory/pkg/tracing"
)

// @title                       Duka Inventory API
// @version                     1.0
// @description                 库存账本服务:预留、释放、出库、补货与低库存报表
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>

// main 主程序入口
//
// 启动流程:
// 1. 加载配置 → 初始化日志 → (可选)初始化链路追踪
// 2. Wire组装依赖:数据库 → 仓储 → 账本 → Handler → 路由
// 3. 启动HTTP和gRPC健康检查
// 4. 收到SIGINT/SIGTERM后优雅关闭
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "配置文件路径,为空时在./config和当前目录查找config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info().
		Int("http_port", cfg.Server.Port).
		Int("grpc_port", cfg.Server.GRPCPort).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Str("redis", cfg.Redis.Addr()).
		Bool("rabbitmq", cfg.RabbitMQ.Enabled).
		Msg("配置加载成功")

	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Error().Err(err).Msg("关闭链路追踪失败")
			}
		}()
	}

	app, cleanup, err := InitializeApp(cfg, log)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	errCh := app.Run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("服务异常退出")
		shutdown(app, cfg, log)
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("收到关闭信号,开始优雅关闭")
	}

	shutdown(app, cfg, log)
	log.Info().Msg("服务已安全关闭")
	return nil
}

func shutdown(app *App, cfg *config.Config, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP服务关闭超时")
	}
}
