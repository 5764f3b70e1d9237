package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// IFNAMSIZ - 1
const maxInterfaceNameLength = 15

var (
	// 커널이 허용하는 인터페이스 이름 문자
	interfacePattern = regexp.MustCompile(`^[A-Za-z0-9_.:\-]+$`)

	// MAC 주소 패턴
	macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
)

// ValidateInterfaceName은 커널 인터페이스 이름으로 사용할 수 있는지 검증
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name is empty")
	}

	if len(name) > maxInterfaceNameLength {
		return fmt.Errorf("interface name %s is longer than %d characters", name, maxInterfaceNameLength)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("interface name %s is reserved", name)
	}

	if !interfacePattern.MatchString(name) {
		return fmt.Errorf("invalid interface name: %s", name)
	}

	return nil
}

// ValidateMACAddress는 콜론으로 구분된 MAC 주소인지 검증
func ValidateMACAddress(mac string) error {
	if !macPattern.MatchString(mac) {
		return fmt.Errorf("invalid MAC address: %s", mac)
	}
	if strings.Trim(mac, "0:") == "" {
		return fmt.Errorf("MAC address %s is the all-zero placeholder", mac)
	}
	return nil
}
