package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appinventory "github.com/dukamart/inventory/internal/application/inventory"
	"github.com/dukamart/inventory/internal/domain/inventory"
	"github.com/dukamart/inventory/internal/interface/http/dto"
	apperrors "github.com/dukamart/inventory/pkg/errors"
	"github.com/dukamart/inventory/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	ledger *appinventory.Ledger
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(ledger *appinventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Initialize 初始化库存
// @Summary      初始化库存
// @Description  为商品创建库存记录,已存在时原样返回(幂等)
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.InitInventoryRequest true "初始库存"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40402 商品不存在 / 40900 参数错误"
// @Router       /api/v1/inventory/{product_id}/init [post]
func (h *InventoryHandler) Initialize(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	var req dto.InitInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	rec, err := h.ledger.Initialize(c.Request.Context(), productID, appinventory.InitOptions{
		Quantity:        req.Quantity,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewInventoryResponse(rec))
}

// Get 查询库存
// @Summary      查询库存
// @Description  库存记录及最近10条流水
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.InventoryDetailResponse}
// @Failure      200 {object} response.Response "40405 库存记录不存在"
// @Router       /api/v1/inventory/{product_id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	view, err := h.ledger.Get(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	// 账本对"不存在"返回nil,HTTP层转换为业务错误码
	if view == nil {
		response.Error(c, inventory.ErrInventoryNotFound)
		return
	}
	response.Success(c, dto.NewInventoryDetailResponse(view))
}

// Reserve 预留库存
// @Summary      预留库存
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.QuantityRequest true "预留数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40001 库存不足 / 40008 并发冲突"
// @Router       /api/v1/inventory/{product_id}/reserve [post]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	h.quantityOp(c, h.ledger.Reserve)
}

// Release 释放预留
// @Summary      释放预留
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.QuantityRequest true "释放数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40006 释放数量超过已预留数量"
// @Router       /api/v1/inventory/{product_id}/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	h.quantityOp(c, h.ledger.Release)
}

// Restock 补货
// @Summary      补货
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.QuantityRequest true "补货数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40104 无权限"
// @Router       /api/v1/inventory/{product_id}/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	h.quantityOp(c, h.ledger.Restock)
}

// Sell 出库
// @Summary      出库
// @Description  先扣减预留,超出预留部分是否允许由allow_unreserved(或服务端配置)决定
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.SellRequest true "出库数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      200 {object} response.Response "40001 库存不足 / 40007 不允许销售未预留的库存"
// @Router       /api/v1/inventory/{product_id}/sell [post]
func (h *InventoryHandler) Sell(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	var req dto.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	opts := []appinventory.SellOption{appinventory.WithSaleReason(req.Reason)}
	if req.AllowUnreserved != nil {
		opts = append(opts, appinventory.WithUnreservedSale(*req.AllowUnreserved))
	}

	rec, err := h.ledger.Sell(c.Request.Context(), productID, req.Quantity, opts...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewInventoryResponse(rec))
}

// ReserveItems 多商品预留
// @Summary      多商品预留
// @Description  任一商品预留失败时释放已预留的商品,返回失败商品ID
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReserveItemsRequest true "购物车"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40001 库存不足"
// @Router       /api/v1/inventory/reservations [post]
func (h *InventoryHandler) ReserveItems(c *gin.Context) {
	var req dto.ReserveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	items := make([]appinventory.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, appinventory.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	if err := h.ledger.ReserveItems(c.Request.Context(), items, req.Reason); err != nil {
		var ie *appinventory.ItemError
		if errors.As(err, &ie) {
			appErr := apperrors.GetAppError(ie.Err)
			data := gin.H{"product_id": ie.ProductID}
			var ce *appinventory.CompensationError
			if errors.As(err, &ce) {
				zerolog.Ctx(c.Request.Context()).Error().Err(ce).Msg("预留回滚不完整,需要人工处理")
				data["compensation_failed"] = true
			}
			c.JSON(http.StatusOK, response.Response{
				Code:    appErr.Code,
				Message: appErr.Message,
				Data:    data,
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"reserved": len(items)})
}

// ListLowStock 低库存报表
// @Summary      低库存报表
// @Description  在库总数 <= 补货阈值的商品,按在库总数升序
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=response.ListData{list=[]dto.LowStockItemResponse}}
// @Router       /api/v1/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.ledger.ListLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithList(c, dto.NewLowStockList(items), len(items))
}

type quantityFunc func(ctx context.Context, productID uint, qty int, reason string) (*inventory.Record, error)

// quantityOp 预留/释放/补货的公共流程:解析参数 → 调用账本 → 返回记录
func (h *InventoryHandler) quantityOp(c *gin.Context, fn quantityFunc) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	rec, err := fn(c.Request.Context(), productID, req.Quantity, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewInventoryResponse(rec))
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的商品ID")
		return 0, false
	}
	return uint(id), true
}
