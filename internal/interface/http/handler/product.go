package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dukamart/inventory/internal/domain/product"
	"github.com/dukamart/inventory/internal/interface/http/dto"
	apperrors "github.com/dukamart/inventory/pkg/errors"
	"github.com/dukamart/inventory/pkg/response"
)

// ProductHandler 商品HTTP处理器
// 商品目录只保留库存需要的最小字段(SKU、名称、价格)
type ProductHandler struct {
	service product.Service
}

// NewProductHandler 创建商品处理器
func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// CreateProduct 创建商品
// @Summary      创建商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      200 {object} response.Response "40900 参数错误 / 40009 SKU已存在"
// @Router       /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), req.SKU, req.Name, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}

// GetProduct 查询商品
// @Summary      查询商品
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      200 {object} response.Response "40402 商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的商品ID")
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}
