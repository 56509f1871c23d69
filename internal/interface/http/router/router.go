// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dukamart/inventory/internal/infrastructure/config"
	"github.com/dukamart/inventory/internal/interface/http/handler"
	"github.com/dukamart/inventory/internal/interface/http/middleware"
	"github.com/dukamart/inventory/pkg/jwt"
	"github.com/dukamart/inventory/pkg/response"
)

// Options 路由选项
type Options struct {
	Mode          string // debug | release | test
	EnableSwagger bool
	CORS          config.CORSConfig
}

// New 创建Gin引擎并注册路由
//
// 权限划分:
//   - 查询库存/商品:任何有效Token
//   - 预留/释放/出库:订单服务(service)或管理员
//   - 初始化/补货/低库存报表/创建商品:管理员
func New(
	opts Options,
	log zerolog.Logger,
	inventoryHandler *handler.InventoryHandler,
	productHandler *handler.ProductHandler,
	auth *middleware.AuthMiddleware,
) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(middleware.Logger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(opts.CORS))

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 生产环境建议关闭
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(auth.RequireAuth())

	admin := auth.RequireRole(jwt.RoleAdmin)
	orderFlow := auth.RequireRole(jwt.RoleService)

	products := v1.Group("/products")
	{
		products.POST("", admin, productHandler.CreateProduct)
		products.GET("/:id", productHandler.GetProduct)
	}

	inv := v1.Group("/inventory")
	{
		inv.GET("/low-stock", admin, inventoryHandler.ListLowStock)
		inv.POST("/reservations", orderFlow, inventoryHandler.ReserveItems)

		inv.GET("/:product_id", inventoryHandler.Get)
		inv.POST("/:product_id/init", admin, inventoryHandler.Initialize)
		inv.POST("/:product_id/restock", admin, inventoryHandler.Restock)
		inv.POST("/:product_id/reserve", orderFlow, inventoryHandler.Reserve)
		inv.POST("/:product_id/release", orderFlow, inventoryHandler.Release)
		inv.POST("/:product_id/sell", orderFlow, inventoryHandler.Sell)
	}

	return r
}
