package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/infrastructure/config"
	"github.com/yast/yast-network-sub000/internal/infrastructure/container"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
)

var version = "dev"

func main() {
	// 로거 초기화
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	// LOG_LEVEL 환경 변수 설정
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr != "" {
		logLevel, err := logrus.ParseLevel(logLevelStr)
		if err != nil {
			logger.WithError(err).Warnf("Unknown LOG_LEVEL value: %s. Using default Info level.", logLevelStr)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logLevel)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cmds := []Runner{
		newListCommand(),
		newAutoinstallCommand(),
		newWriteUdevCommand(),
		newRenameCommand(),
		newSlavesCommand(),
		newRestoreUdevCommand(),
		newServeCommand(),
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Network device reconciliation and persistent naming\n")
		fmt.Fprintf(os.Stderr, "Version: %s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		for _, cmd := range cmds {
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", cmd.Name(), cmd.Description())
		}
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	var selected Runner
	for _, cmd := range cmds {
		if cmd.Name() == args[0] {
			selected = cmd
			break
		}
	}
	if selected == nil {
		logger.Fatalf("Unknown subcommand: %s", args[0])
	}
	if err := selected.Init(args[1:]); err != nil {
		logger.WithError(err).Fatal("Failed to parse command options")
	}

	// 설정 로드
	cfg, err := config.NewEnvironmentConfigLoader().Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create dependency injection container")
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	session := appContainer.GetSession()
	metrics.SetInfo(version, session.Arch, cfg.Store.Backend)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	entry := logger.WithFields(logrus.Fields{
		"command":    selected.Name(),
		"session_id": session.ID,
	})
	entry.Debug("Command started")

	if err := selected.Run(ctx, appContainer, logger); err != nil {
		entry.WithError(err).Error("Command failed")
		metrics.RecordError(errorLabel(err))
		cancel()
		appContainer.Close()
		os.Exit(1)
	}

	if session.RestartRequired() {
		entry.Warn("Network service restart required to apply device renames")
	}
}

// errorLabel maps err to the metrics label of its domain error type
func errorLabel(err error) string {
	if errorType := errors.TypeOf(err); errorType != "" {
		return string(errorType)
	}
	return "UNKNOWN"
}
