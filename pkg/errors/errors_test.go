package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesDerivedInstances(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	derived := ErrRedisError.WithErr(cause)

	assert.ErrorIs(t, derived, ErrRedisError)
	assert.ErrorIs(t, derived, cause)
	assert.NotErrorIs(t, derived, ErrDatabaseError)

	// 原值不被修改
	assert.Nil(t, ErrRedisError.Err)
}

func TestAppError_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reserve: %w", ErrTimeout.WithErr(errors.New("deadline")))

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ErrCodeTimeout, CodeOf(err))
	assert.True(t, IsAppError(err))
}

func TestGetAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := GetAppError(plain)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, plain, appErr.Err)

	assert.Equal(t, 0, CodeOf(nil))
	assert.Equal(t, ErrCodeForbidden, CodeOf(ErrForbidden))
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "[40104] 无权限访问", ErrForbidden.Error())
	assert.Equal(t, "[50000] 查询失败: boom", Wrap(errors.New("boom"), "查询失败").Error())
	assert.Equal(t, "[50000] 商品7: boom", Wrapf(errors.New("boom"), "商品%d", 7).Error())
}
