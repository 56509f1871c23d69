//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// Wire工作流程:
// Step 1: 编写wire.go(本文件),定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go,包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	appinventory "github.com/dukamart/inventory/internal/application/inventory"
	"github.com/dukamart/inventory/internal/domain/product"
	"github.com/dukamart/inventory/internal/infrastructure/config"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/redis"
	grpcserver "github.com/dukamart/inventory/internal/interface/grpc"
	"github.com/dukamart/inventory/internal/interface/http/handler"
	"github.com/dukamart/inventory/internal/interface/http/middleware"
)

// infrastructureSet 基础设施层依赖:数据库、Redis、低库存通知链
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideNotifier,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewProductRepository,
	mysql.NewInventoryRepository,
	mysql.NewInventoryLogRepository,
	mysql.NewTxManager,
	wire.Bind(new(appinventory.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	product.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appinventory.NewOptions,
	appinventory.NewLedger,
)

// middlewareSet JWT管理器、令牌黑名单、认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	redis.NewTokenBlacklist,
	wire.Bind(new(middleware.RevocationChecker), new(*redis.TokenBlacklist)),
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewInventoryHandler,
	handler.NewProductHandler,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭RabbitMQ、Redis、数据库连接
func InitializeApp(cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideRouter,
		grpcserver.NewServer,
		newApp,
	)
	return nil, nil, nil
}
