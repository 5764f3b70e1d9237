package udev

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
	"github.com/yast/yast-network-sub000/pkg/utils"
)

// AdmController drives udevd through udevadm
type AdmController struct {
	executor interfaces.CommandExecutor
	logger   *logrus.Logger
	timeout  time.Duration
	retry    utils.RetryConfig
}

// NewAdmController creates a new AdmController
func NewAdmController(
	executor interfaces.CommandExecutor,
	logger *logrus.Logger,
	timeout time.Duration,
	retry utils.RetryConfig,
) *AdmController {
	return &AdmController{
		executor: executor,
		logger:   logger,
		timeout:  timeout,
		retry:    retry,
	}
}

// Reload runs `udevadm control --reload-rules`
func (c *AdmController) Reload(ctx context.Context) error {
	return c.run(ctx, "control", "--reload-rules")
}

// Trigger runs `udevadm trigger` for one subsystem and action
func (c *AdmController) Trigger(ctx context.Context, subsystem, action string) error {
	return c.run(ctx, "trigger", "--subsystem-match="+subsystem, "--action="+action)
}

func (c *AdmController) run(ctx context.Context, args ...string) error {
	attempt := 0
	return utils.RetryWithBackoff(ctx, c.retry, func() error {
		attempt++
		_, err := c.executor.ExecuteWithTimeout(ctx, c.timeout, "udevadm", args...)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"args":    args,
				"attempt": attempt,
			}).Warn("udevadm failed")
		}
		return err
	})
}
