package adapters

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// RealOSDetector is an OSDetector implementation that reads os-release
type RealOSDetector struct {
	fileSystem interfaces.FileSystem
	path       string
}

// NewRealOSDetector creates a new RealOSDetector
func NewRealOSDetector(fs interfaces.FileSystem, path string) interfaces.OSDetector {
	if path == "" {
		path = constants.OSReleaseFile
	}
	return &RealOSDetector{
		fileSystem: fs,
		path:       path,
	}
}

// DetectOS returns the distribution family
func (d *RealOSDetector) DetectOS() (interfaces.OSType, error) {
	releaseInfo, err := d.parseOSRelease()
	if err != nil {
		return "", errors.NewSystemError("OS detection failed: cannot read "+d.path, err)
	}

	id, ok := releaseInfo["ID"]
	if !ok {
		return "", errors.NewSystemError("OS detection failed: no ID field in "+d.path, nil)
	}
	idLike := releaseInfo["ID_LIKE"]

	switch {
	case id == "sles", id == "sled", id == "opensuse", strings.HasPrefix(id, "opensuse-"),
		strings.Contains(idLike, "suse"):
		return interfaces.OSTypeSUSE, nil
	case id == "rhel", id == "centos", id == "rocky", id == "almalinux", id == "ol", id == "fedora",
		strings.Contains(idLike, "rhel"), strings.Contains(idLike, "fedora"):
		return interfaces.OSTypeRHEL, nil
	}

	return "", errors.NewSystemError(fmt.Sprintf("unsupported OS type. ID: '%s', ID_LIKE: '%s'", id, idLike), nil)
}

// SysconfigDirFor returns where the distribution keeps ifcfg files
func SysconfigDirFor(osType interfaces.OSType) string {
	if osType == interfaces.OSTypeRHEL {
		return constants.RHELNetworkScriptsDir
	}
	return constants.SysconfigNetworkDir
}

// parseOSRelease parses the os-release file into a map
func (d *RealOSDetector) parseOSRelease() (map[string]string, error) {
	content, err := d.fileSystem.ReadFile(d.path)
	if err != nil {
		return nil, err
	}

	releaseInfo := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		releaseInfo[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return releaseInfo, nil
}
