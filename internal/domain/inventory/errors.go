package inventory

import (
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// 库存领域错误定义
//
// 错误分类：
// - 参数错误：数量非法
// - 业务错误：库存不足、超额释放、未预留出库（不可重试）
// - 并发冲突：CAS更新未命中（可重试）
var (
	// ErrInventoryNotFound 库存记录不存在，调用方需要先Initialize
	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "库存记录不存在")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrInvalidRelease 释放数量超过已预留数量（通常是调用方逻辑错误）
	ErrInvalidRelease = apperrors.New(apperrors.ErrCodeInvalidRelease, "释放数量超过已预留数量")

	// ErrUnreservedSale 当前策略不允许销售未预留的库存
	ErrUnreservedSale = apperrors.New(apperrors.ErrCodeUnreservedSale, "出库数量超过已预留数量")

	// ErrConcurrencyConflict 条件更新影响0行，记录已被其他请求修改
	ErrConcurrencyConflict = apperrors.New(apperrors.ErrCodeConcurrencyConflict, "库存并发冲突，请重试")

	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrNegativeStock 库存计数不能为负
	ErrNegativeStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInconsistentStock 预留数量超过在库总数
	ErrInconsistentStock = apperrors.New(apperrors.ErrCodeBusinessError, "预留数量不能超过在库总数")

	// ErrRecordExists 商品已有库存记录(唯一索引冲突)
	ErrRecordExists = apperrors.New(apperrors.ErrCodeDuplicateEntry, "库存记录已存在")

	// ErrInvalidReorderLevel 补货阈值不能为负
	ErrInvalidReorderLevel = apperrors.New(apperrors.ErrCodeInvalidParams, "补货阈值不能为负数")
)

// IsRetryable 只有并发冲突可以由调用方重新读取后重试
func IsRetryable(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrCodeConcurrencyConflict
}
