package sysconfig

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// ignoredSuffixes are editor and package manager leftovers next to ifcfg files
var ignoredSuffixes = []string{"~", ".bak", ".orig", ".rpmnew", ".rpmsave", ".old", ".scpmbackup"}

// IfcfgStore is a ConfigStore backed by ifcfg-<name> files in the sysconfig
// network directory
type IfcfgStore struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
	configDir  string
}

// NewIfcfgStore creates a new IfcfgStore
func NewIfcfgStore(fs interfaces.FileSystem, logger *logrus.Logger, configDir string) *IfcfgStore {
	if configDir == "" {
		configDir = constants.SysconfigNetworkDir
	}
	return &IfcfgStore{
		fileSystem: fs,
		logger:     logger,
		configDir:  configDir,
	}
}

// List returns the configured device names, optionally filtered by class
func (s *IfcfgStore) List(ctx context.Context, kind entities.DeviceType) ([]string, error) {
	files, err := s.fileSystem.ListFiles(s.configDir)
	if err != nil {
		return nil, errors.NewSystemError("sysconfig 디렉토리 읽기 실패", err)
	}

	var names []string
	for _, file := range files {
		name, ok := deviceNameFromFile(file)
		if !ok {
			continue
		}
		if kind != entities.TypeUnknown {
			cfg, err := s.Read(ctx, name)
			if err != nil {
				s.logger.WithError(err).WithField("config", name).Warn("Skipping unreadable ifcfg file")
				continue
			}
			if cfg.DeviceType() != kind {
				continue
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// Read parses ifcfg-<name>
func (s *IfcfgStore) Read(ctx context.Context, name string) (*entities.InterfaceConfig, error) {
	path := s.path(name)
	if !s.fileSystem.Exists(path) {
		return nil, errors.NewNotFoundError("ifcfg file not found: " + path)
	}
	data, err := s.fileSystem.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError("ifcfg 파일 읽기 실패", err)
	}
	return entities.ParseInterfaceConfig(name, ParseIfcfg(data)), nil
}

// Write replaces ifcfg-<name> atomically
func (s *IfcfgStore) Write(ctx context.Context, name string, cfg *entities.InterfaceConfig) error {
	path := s.path(name)
	if err := s.fileSystem.WriteFileAtomic(path, FormatIfcfg(cfg.ToFields()), constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError("ifcfg 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"interface":   name,
		"config_path": path,
	}).Info("ifcfg file written")
	return nil
}

// Delete removes ifcfg-<name> if present
func (s *IfcfgStore) Delete(ctx context.Context, name string) error {
	path := s.path(name)
	if !s.fileSystem.Exists(path) {
		return nil
	}
	if err := s.fileSystem.Remove(path); err != nil {
		return errors.NewSystemError("ifcfg 파일 제거 실패", err)
	}

	s.logger.WithField("interface", name).Info("ifcfg file removed")
	return nil
}

func (s *IfcfgStore) path(name string) string {
	return filepath.Join(s.configDir, constants.IfcfgPrefix+name)
}

// deviceNameFromFile maps "ifcfg-eth0" to "eth0". Loopback and backup files
// are not interface configurations.
func deviceNameFromFile(file string) (string, bool) {
	if !strings.HasPrefix(file, constants.IfcfgPrefix) {
		return "", false
	}
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(file, suffix) {
			return "", false
		}
	}
	name := strings.TrimPrefix(file, constants.IfcfgPrefix)
	if name == "" || name == "lo" {
		return "", false
	}
	return name, true
}
