package hardware

import (
	"context"
	"net"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// LinkLister returns the kernel links, netlink.LinkList in production
type LinkLister func() ([]netlink.Link, error)

// NetlinkInventory detects network hardware from the kernel link table and
// the device attributes exported under sysfs. Only links backed by a device
// node are reported; bonds, bridges and other virtual links exist only as
// configurations.
type NetlinkInventory struct {
	listLinks  LinkLister
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
	sysfsDir   string
}

// NewNetlinkInventory creates a new NetlinkInventory
func NewNetlinkInventory(
	listLinks LinkLister,
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	sysfsDir string,
) *NetlinkInventory {
	if listLinks == nil {
		listLinks = netlink.LinkList
	}
	if sysfsDir == "" {
		sysfsDir = constants.SysClassNet
	}
	return &NetlinkInventory{
		listLinks:  listLinks,
		fileSystem: fs,
		logger:     logger,
		sysfsDir:   sysfsDir,
	}
}

// Detect returns the hardware snapshot ordered by kernel link index
func (i *NetlinkInventory) Detect(ctx context.Context) ([]entities.HardwareDescriptor, error) {
	links, err := i.listLinks()
	if err != nil {
		return nil, errors.NewSourceUnavailableError("listing network links failed", err)
	}

	links = lo.Filter(links, func(link netlink.Link, _ int) bool {
		return link.Attrs().Flags&net.FlagLoopback == 0
	})
	sort.SliceStable(links, func(a, b int) bool {
		return links[a].Attrs().Index < links[b].Attrs().Index
	})

	var hardware []entities.HardwareDescriptor
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewSourceUnavailableError("hardware detection cancelled", err)
		}

		attrs := link.Attrs()
		deviceUevent := i.readUevent(filepath.Join(i.sysfsDir, attrs.Name, "device", "uevent"))
		if deviceUevent == nil {
			continue
		}

		hw := entities.HardwareDescriptor{
			DevName:        attrs.Name,
			MAC:            attrs.HardwareAddr.String(),
			Driver:         deviceUevent["DRIVER"],
			Modalias:       deviceUevent["MODALIAS"],
			LinkUp:         attrs.OperState == netlink.OperUp,
			Active:         attrs.Flags&net.FlagUp != 0,
			DetectionIndex: len(hardware),
		}
		hw.Bus, hw.BusID = busOf(deviceUevent)
		hw.HotplugClass = hotplugClassOf(hw.Bus)
		hw.Type = i.deviceType(link)

		i.logger.WithFields(logrus.Fields{
			"interface": hw.DevName,
			"mac":       hw.MAC,
			"bus":       hw.Bus,
			"driver":    hw.Driver,
		}).Debug("Network device detected")
		hardware = append(hardware, hw)
	}

	return hardware, nil
}

func (i *NetlinkInventory) deviceType(link netlink.Link) entities.DeviceType {
	attrs := link.Attrs()
	uevent := i.readUevent(filepath.Join(i.sysfsDir, attrs.Name, "uevent"))
	switch uevent["DEVTYPE"] {
	case "wlan":
		return entities.TypeWireless
	case "bond":
		return entities.TypeBond
	case "bridge":
		return entities.TypeBridge
	case "vlan":
		return entities.TypeVlan
	}
	if i.fileSystem.Exists(filepath.Join(i.sysfsDir, attrs.Name, "wireless")) {
		return entities.TypeWireless
	}

	switch l := link.(type) {
	case *netlink.Tuntap:
		if l.Mode == netlink.TUNTAP_MODE_TAP {
			return entities.TypeTap
		}
		return entities.TypeTun
	case *netlink.IPoIB:
		return entities.TypeInfiniband
	}

	// em1, p1p1, usb0 등 이름만으로는 분류되지 않는 장치는 이더넷
	if t := entities.DeviceTypeFromName(attrs.Name); t.IsKnown() {
		return t
	}
	return entities.TypeEthernet
}

// readUevent parses a KEY=value uevent file, nil when it does not exist
func (i *NetlinkInventory) readUevent(path string) map[string]string {
	if !i.fileSystem.Exists(path) {
		return nil
	}
	data, err := i.fileSystem.ReadFile(path)
	if err != nil {
		i.logger.WithError(err).WithField("path", path).Debug("Failed to read uevent")
		return nil
	}

	values := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		if key, value, ok := strings.Cut(strings.TrimSpace(line), "="); ok {
			values[key] = value
		}
	}
	return values
}

// busOf derives the bus name from the modalias prefix. Only PCI exports a
// slot name in the device uevent.
func busOf(uevent map[string]string) (bus, busID string) {
	if prefix, _, ok := strings.Cut(uevent["MODALIAS"], ":"); ok {
		bus = prefix
	}
	return bus, uevent["PCI_SLOT_NAME"]
}

func hotplugClassOf(bus string) entities.HotplugClass {
	switch bus {
	case "usb":
		return entities.HotplugUSB
	case "pcmcia":
		return entities.HotplugPCMCIA
	}
	return entities.HotplugNone
}
