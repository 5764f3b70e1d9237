package container

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/application/usecases"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
	"github.com/yast/yast-network-sub000/internal/domain/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/adapters"
	"github.com/yast/yast-network-sub000/internal/infrastructure/config"
	"github.com/yast/yast-network-sub000/internal/infrastructure/hardware"
	"github.com/yast/yast-network-sub000/internal/infrastructure/health"
	"github.com/yast/yast-network-sub000/internal/infrastructure/persistence"
	"github.com/yast/yast-network-sub000/internal/infrastructure/profile"
	infraServices "github.com/yast/yast-network-sub000/internal/infrastructure/services"
	"github.com/yast/yast-network-sub000/internal/infrastructure/sysconfig"
	"github.com/yast/yast-network-sub000/internal/infrastructure/udev"
	"github.com/yast/yast-network-sub000/pkg/utils"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock

	// 외부 협력자
	inventory      interfaces.HardwareInventory
	configStore    interfaces.ConfigStore
	udevStore      *udev.FileRuleStore
	udevController interfaces.UdevController
	linkController interfaces.LinkController
	backupService  interfaces.BackupService
	profileLoader  *profile.Loader

	// 도메인 서비스
	session     *services.Session
	table       *services.ItemTable
	udevEngine  *services.UdevRuleEngine
	eligibility *services.SlaveEligibility
	operation   *services.PendingOperation

	healthService *health.HealthService

	// 유스케이스
	reconcileUseCase       *usecases.ReconcileUseCase
	writeUdevUseCase       *usecases.WriteUdevUseCase
	autoinstallUseCase     *usecases.AutoinstallUseCase
	renameDeviceUseCase    *usecases.RenameDeviceUseCase
	slaveCandidatesUseCase *usecases.SlaveCandidatesUseCase

	// 데이터베이스 (CONFIG_BACKEND=mysql)
	db *sql.DB
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	container.initializeServices()
	container.initializeUseCases()

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() error {
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor(c.logger)
	c.clock = adapters.NewRealClock()

	switch c.config.Store.Backend {
	case config.BackendMySQL:
		store, err := c.openMySQLStore()
		if err != nil {
			return err
		}
		c.configStore = store
	default:
		dir, err := c.resolveSysconfigDir()
		if err != nil {
			return err
		}
		c.configStore = sysconfig.NewIfcfgStore(c.fileSystem, c.logger, dir)
	}

	c.backupService = infraServices.NewBackupService(
		c.fileSystem,
		c.clock,
		c.logger,
		c.config.Paths.BackupDir,
		c.config.Paths.BackupKeep,
	)
	c.inventory = hardware.NewNetlinkInventory(nil, c.fileSystem, c.logger, c.config.Paths.SysfsNetDir)
	c.linkController = hardware.NewNetlinkLinkController(c.logger)
	c.udevStore = udev.NewFileRuleStore(c.fileSystem, c.backupService, c.logger, c.config.Paths.UdevRules)
	c.udevController = udev.NewAdmController(
		c.commandExecutor,
		c.logger,
		c.config.Engine.CommandTimeout,
		utils.RetryConfig{
			MaxAttempts:  c.config.Engine.UdevRetries,
			InitialDelay: c.config.Engine.UdevRetryDelay,
			MaxDelay:     10 * c.config.Engine.UdevRetryDelay,
			Multiplier:   2.0,
		},
	)
	c.profileLoader = profile.NewLoader(c.fileSystem, c.logger)

	return nil
}

// resolveSysconfigDir는 설정이 비어 있으면 배포판에 맞는 ifcfg 디렉토리를 고릅니다
func (c *Container) resolveSysconfigDir() (string, error) {
	if c.config.Paths.SysconfigDir != "" {
		return c.config.Paths.SysconfigDir, nil
	}

	osType, err := adapters.NewRealOSDetector(c.fileSystem, c.config.Paths.OSRelease).DetectOS()
	if err != nil {
		return "", err
	}
	dir := adapters.SysconfigDirFor(osType)
	c.logger.WithFields(logrus.Fields{
		"os_type":       osType,
		"sysconfig_dir": dir,
	}).Info("Detected distribution family")
	return dir, nil
}

func (c *Container) openMySQLStore() (*persistence.MySQLConfigStore, error) {
	db, err := sql.Open("mysql", c.buildDSN())
	if err != nil {
		return nil, err
	}

	// 연결 풀 설정
	db.SetMaxOpenConns(c.config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.config.Database.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	store := persistence.NewMySQLConfigStore(db, c.logger)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	return store, nil
}

// initializeServices는 도메인 서비스들을 초기화합니다
func (c *Container) initializeServices() {
	c.session = services.NewSession(c.config.Engine.Arch)
	c.table = services.NewItemTable(c.inventory, c.configStore, c.udevStore, c.logger)
	c.udevEngine = services.NewUdevRuleEngine(c.udevStore, c.udevController, c.linkController, c.session, c.logger)
	c.eligibility = services.NewSlaveEligibility(c.configStore, c.table, c.session, c.logger)
	c.operation = services.NewPendingOperation(
		c.table,
		c.configStore,
		c.udevEngine,
		c.session,
		c.config.Engine.MaxBondSlaves,
		c.logger,
	)
	c.healthService = health.NewHealthService(c.clock, c.logger, c.config.Store.Backend)
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() {
	c.reconcileUseCase = usecases.NewReconcileUseCase(c.table, c.eligibility, c.udevEngine, c.logger)
	c.writeUdevUseCase = usecases.NewWriteUdevUseCase(c.table, c.udevEngine, c.session, c.logger)
	c.autoinstallUseCase = usecases.NewAutoinstallUseCase(c.table, c.operation, c.udevEngine, c.writeUdevUseCase, c.logger)
	c.renameDeviceUseCase = usecases.NewRenameDeviceUseCase(c.table, c.operation, c.writeUdevUseCase, c.logger)
	c.slaveCandidatesUseCase = usecases.NewSlaveCandidatesUseCase(c.table, c.eligibility, c.logger)
}

// buildDSN은 데이터베이스 연결 문자열을 생성합니다
func (c *Container) buildDSN() string {
	cfg := c.config.Database
	return cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Host + ":" + cfg.Port + ")/" + cfg.Database + "?parseTime=true"
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetSession returns the session shared by all services
func (c *Container) GetSession() *services.Session {
	return c.session
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetProfileLoader returns the autoinstall profile loader
func (c *Container) GetProfileLoader() *profile.Loader {
	return c.profileLoader
}

// GetBackupService returns the udev rules backup service
func (c *Container) GetBackupService() interfaces.BackupService {
	return c.backupService
}

// GetUdevRulesPath returns the persistent-net rules file
func (c *Container) GetUdevRulesPath() string {
	return c.udevStore.Path()
}

// GetUdevController returns the udevadm controller
func (c *Container) GetUdevController() interfaces.UdevController {
	return c.udevController
}

// GetReconcileUseCase는 재조정 유스케이스를 반환합니다
func (c *Container) GetReconcileUseCase() *usecases.ReconcileUseCase {
	return c.reconcileUseCase
}

// GetWriteUdevUseCase는 udev 규칙 저장 유스케이스를 반환합니다
func (c *Container) GetWriteUdevUseCase() *usecases.WriteUdevUseCase {
	return c.writeUdevUseCase
}

// GetAutoinstallUseCase는 autoinstall 유스케이스를 반환합니다
func (c *Container) GetAutoinstallUseCase() *usecases.AutoinstallUseCase {
	return c.autoinstallUseCase
}

// GetRenameDeviceUseCase는 이름 변경 유스케이스를 반환합니다
func (c *Container) GetRenameDeviceUseCase() *usecases.RenameDeviceUseCase {
	return c.renameDeviceUseCase
}

// GetSlaveCandidatesUseCase는 슬레이브 후보 유스케이스를 반환합니다
func (c *Container) GetSlaveCandidatesUseCase() *usecases.SlaveCandidatesUseCase {
	return c.slaveCandidatesUseCase
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
