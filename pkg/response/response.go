package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// Response 统一响应结构
// 设计说明:
// 1. Code是业务错误码(非HTTP状态码),0表示成功
// 2. Message是用户友好的提示信息
// 3. Data是业务数据,成功时返回,失败时省略
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应(自动处理AppError)
//
//	if err := ledger.Reserve(ctx, id, qty, reason); err != nil {
//	    response.Error(c, err)
//	    return
//	}
//
// 内部错误(AppError.Err)只写日志,不返回给客户端
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil || appErr.Code >= 50000 {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Int("code", appErr.Code).
			Str("path", c.FullPath()).
			Msg("请求失败")
	}

	c.JSON(http.StatusOK, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ListData 不分页的列表数据
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

// SuccessWithList 列表成功响应
func SuccessWithList(c *gin.Context, list interface{}, total int) {
	Success(c, ListData{List: list, Total: total})
}
