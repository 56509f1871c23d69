package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordStep(log *[]string, action, compensation string, fail error) (func(context.Context) error, func(context.Context) error) {
	return func(context.Context) error {
			if fail != nil {
				return fail
			}
			*log = append(*log, action)
			return nil
		}, func(context.Context) error {
			*log = append(*log, compensation)
			return nil
		}
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	var log []string
	s := NewSaga(5 * time.Second)

	a, c := recordStep(&log, "预留商品1", "释放商品1", nil)
	s.AddStep("product-1", a, c)
	a, c = recordStep(&log, "预留商品2", "释放商品2", nil)
	s.AddStep("product-2", a, c)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"预留商品1", "预留商品2"}, log)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("库存不足")
	s := NewSaga(5 * time.Second)

	a, c := recordStep(&log, "预留商品1", "释放商品1", nil)
	s.AddStep("product-1", a, c)
	a, c = recordStep(&log, "预留商品2", "释放商品2", nil)
	s.AddStep("product-2", a, c)
	a, c = recordStep(&log, "预留商品3", "释放商品3", boom)
	s.AddStep("product-3", a, c)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsStepError(err))

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Index)
	assert.Equal(t, "product-3", se.Name)

	// 失败步骤本身不补偿
	assert.Equal(t, []string{"预留商品1", "预留商品2", "释放商品2", "释放商品1"}, log)
}

func TestSaga_CompensationFailureContinues(t *testing.T) {
	var log []string
	s := NewSaga(0)

	s.AddStep("first",
		func(context.Context) error { return nil },
		func(context.Context) error { log = append(log, "补偿first"); return nil },
	)
	s.AddStep("second",
		func(context.Context) error { return nil },
		func(context.Context) error { return errors.New("db down") },
	)
	s.AddStep("third",
		func(context.Context) error { return errors.New("fail") },
		nil,
	)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"补偿first"}, log)
	require.Len(t, s.CompensationErrors, 1)
	assert.Contains(t, s.CompensationErrors[0].Error(), "second")
}

func TestSaga_Timeout(t *testing.T) {
	var compensated bool
	s := NewSaga(20 * time.Millisecond)

	s.AddStep("slow",
		func(ctx context.Context) error {
			time.Sleep(40 * time.Millisecond)
			return nil
		},
		func(ctx context.Context) error {
			compensated = true
			assert.NoError(t, ctx.Err(), "补偿使用的ctx不应已取消")
			return nil
		},
	)
	s.AddStep("never", func(context.Context) error {
		t.Fatal("超时后不应继续执行")
		return nil
	}, nil)

	err := s.Execute(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsStepError(err))
	assert.True(t, compensated)
}
