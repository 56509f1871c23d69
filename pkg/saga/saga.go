// Package saga 顺序执行一组本地事务,失败时逆序补偿
//
// 库存场景:购物车包含多个商品,每个商品的预留是一个独立事务。
// 第N个商品预留失败时,释放前N-1个商品的预留,对外表现为"全部成功或全部回滚"。
//
// 注意:Saga只提供最终一致性。补偿执行前,其他请求可以看到中间状态。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/pkg/metrics"
)

// Step Saga步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为nil(无需补偿的步骤)
}

// StepError 步骤执行失败
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("步骤[%d:%s]执行失败: %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Saga 一次性使用,不要重复Execute
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      zerolog.Logger

	// CompensationErrors 补偿失败的错误(补偿失败不会中断后续补偿)
	CompensationErrors []error
}

// Option Saga选项
type Option func(*Saga)

// WithLogger 设置日志
func WithLogger(log zerolog.Logger) Option {
	return func(s *Saga) { s.log = log }
}

// NewSaga 创建Saga,timeout<=0表示不限制整体耗时
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		timeout: timeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 按顺序执行所有步骤
// 任一步骤失败(或整体超时)时逆序补偿已完成的步骤,返回*StepError或超时错误
func (s *Saga) Execute(ctx context.Context) error {
	metrics.InitMetrics()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(context.WithoutCancel(ctx))
			metrics.SagaExecutionsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return fmt.Errorf("saga超时: %w", err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.log.Warn().Err(err).Int("step", i).Str("name", step.Name).Msg("saga步骤失败,开始补偿")
				// 补偿使用不会被取消的ctx,避免补偿也因超时中断
				s.compensate(context.WithoutCancel(ctx))
				metrics.SagaExecutionsTotal.WithLabelValues(metrics.ResultFailure).Inc()
				return &StepError{Index: i, Name: step.Name, Err: err}
			}
		}
		s.executed = append(s.executed, step)
	}

	metrics.SagaExecutionsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return nil
}

func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.SagaCompensationsTotal.Inc()
		if err := step.Compensate(ctx); err != nil {
			// 补偿失败需要人工介入,日志中保留步骤名
			s.log.Error().Err(err).Str("name", step.Name).Msg("saga补偿失败")
			s.CompensationErrors = append(s.CompensationErrors, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	s.executed = nil
}

// IsStepError 判断是否为步骤失败(而非超时)
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
