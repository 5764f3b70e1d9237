package constants

// 시스템 경로 상수들
const (
	// SUSE sysconfig 관련 경로
	SysconfigNetworkDir = "/etc/sysconfig/network"
	// RHEL 계열은 network-scripts 아래에 ifcfg 파일을 둡니다
	RHELNetworkScriptsDir = "/etc/sysconfig/network-scripts"
	OSReleaseFile         = "/etc/os-release"
	IfcfgPrefix           = "ifcfg-"

	// udev 관련 경로
	UdevPersistentNetRules = "/etc/udev/rules.d/70-persistent-net.rules"

	// 백업 디렉토리
	DefaultBackupDir = "/var/lib/lan/udev-backups"

	// 시스템 네트워크 경로
	SysClassNet = "/sys/class/net"
)

// 네트워크 설정 관련 상수들
const (
	// Highest bonding slave slot accepted when validating a bond
	MaxBondSlaves = 32

	// 파일 권한
	ConfigFilePermission = 0644
	RulesFilePermission  = 0644

	// 타임아웃
	DefaultCommandTimeout = 30 // seconds
)

// Architectures whose channel devices must declare layer 2 support before
// they can be enslaved into a bond
var Layer2Architectures = []string{"s390", "s390x"}

// 기본값 상수들
const (
	// 데이터베이스 기본값
	DefaultDBHost = "localhost"
	DefaultDBPort = "3306"
	DefaultDBName = "lan"

	DefaultLogLevel    = "info"
	DefaultMetricsPort = "9102"
)
