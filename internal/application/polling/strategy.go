package polling

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

// Strategy는 재조정 주기를 결정하는 인터페이스입니다
type Strategy interface {
	// NextInterval은 다음 재조정까지의 대기 시간을 반환합니다
	NextInterval(success bool) time.Duration
	// Reset은 전략을 초기 상태로 리셋합니다
	Reset()
}

// FixedIntervalStrategy always waits the same interval
type FixedIntervalStrategy struct {
	Interval time.Duration
}

// NextInterval returns the fixed interval
func (s *FixedIntervalStrategy) NextInterval(bool) time.Duration {
	return s.Interval
}

// Reset does nothing
func (s *FixedIntervalStrategy) Reset() {}

// ExponentialBackoffStrategy는 실패가 이어질수록 간격을 늘리는 전략입니다
type ExponentialBackoffStrategy struct {
	baseInterval time.Duration
	maxInterval  time.Duration
	multiplier   float64
	failures     int
	logger       *logrus.Logger
}

// NewExponentialBackoffStrategy는 새로운 지수 백오프 전략을 생성합니다
func NewExponentialBackoffStrategy(
	baseInterval time.Duration,
	maxInterval time.Duration,
	multiplier float64,
	logger *logrus.Logger,
) *ExponentialBackoffStrategy {
	if multiplier <= 1 {
		multiplier = 2.0
	}
	if maxInterval < baseInterval {
		maxInterval = baseInterval
	}

	return &ExponentialBackoffStrategy{
		baseInterval: baseInterval,
		maxInterval:  maxInterval,
		multiplier:   multiplier,
		logger:       logger,
	}
}

// NextInterval은 다음 재조정까지의 대기 시간을 계산합니다
func (s *ExponentialBackoffStrategy) NextInterval(success bool) time.Duration {
	if success {
		if s.failures > 0 {
			s.logger.Debug("Resetting backoff after successful reconcile")
			s.Reset()
		}
		return s.baseInterval
	}

	s.failures++
	metrics.SetBackoffLevel(float64(s.failures))

	next := time.Duration(float64(s.baseInterval) * math.Pow(s.multiplier, float64(s.failures-1)))
	if next > s.maxInterval {
		next = s.maxInterval
	}

	s.logger.WithFields(logrus.Fields{
		"failures":      s.failures,
		"next_interval": next,
	}).Debug("Reconcile backoff calculated")
	return next
}

// Reset은 실패 카운터를 리셋합니다
func (s *ExponentialBackoffStrategy) Reset() {
	s.failures = 0
	metrics.SetBackoffLevel(0)
}

// PollingController runs a task repeatedly, spacing runs by its strategy
type PollingController struct {
	strategy Strategy
	logger   *logrus.Logger
}

// NewPollingController는 새로운 폴링 컨트롤러를 생성합니다
func NewPollingController(strategy Strategy, logger *logrus.Logger) *PollingController {
	return &PollingController{
		strategy: strategy,
		logger:   logger,
	}
}

// Start runs task once immediately and then after every interval until ctx
// is cancelled
func (c *PollingController) Start(ctx context.Context, task func(context.Context) error) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			err := task(ctx)
			if err != nil {
				c.logger.WithError(err).Error("Reconcile task failed")
			}
			timer.Reset(c.strategy.NextInterval(err == nil))
		}
	}
}
