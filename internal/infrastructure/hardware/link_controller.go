package hardware

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
)

// NetlinkLinkController changes link state through netlink
type NetlinkLinkController struct {
	logger     *logrus.Logger
	linkByName func(name string) (netlink.Link, error)
	setDown    func(link netlink.Link) error
}

// NewNetlinkLinkController creates a new NetlinkLinkController
func NewNetlinkLinkController(logger *logrus.Logger) *NetlinkLinkController {
	return &NetlinkLinkController{
		logger:     logger,
		linkByName: netlink.LinkByName,
		setDown:    netlink.LinkSetDown,
	}
}

// SetLinkDown brings the named link down
func (c *NetlinkLinkController) SetLinkDown(ctx context.Context, name string) error {
	link, err := c.linkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if stderrors.As(err, &notFound) {
			return errors.NewNotFoundError(fmt.Sprintf("link %s not found", name))
		}
		return errors.NewSystemError(fmt.Sprintf("looking up link %s failed", name), err)
	}

	if err := c.setDown(link); err != nil {
		return errors.NewSystemError(fmt.Sprintf("setting link %s down failed", name), err)
	}

	c.logger.WithField("interface", name).Info("Link set down")
	return nil
}
