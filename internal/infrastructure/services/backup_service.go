package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// BackupService는 교체되기 전 파일의 백업을 관리하는 서비스입니다
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
	keep       int
}

// NewBackupService는 새로운 BackupService를 생성합니다. keep이 0보다 크면
// 이름별로 가장 최근 keep개의 백업만 유지합니다.
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
	keep int,
) interfaces.BackupService {
	if backupDir == "" {
		backupDir = constants.DefaultBackupDir
	}
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
		keep:       keep,
	}
}

// CreateBackup은 현재 파일의 백업을 생성합니다
func (s *BackupService) CreateBackup(ctx context.Context, name string, path string) error {
	if !s.fileSystem.Exists(path) {
		s.logger.WithFields(logrus.Fields{
			"name": name,
			"path": path,
		}).Debug("No file to back up")
		return nil
	}

	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return errors.NewSystemError("백업 디렉토리 생성 실패", err)
	}

	content, err := s.fileSystem.ReadFile(path)
	if err != nil {
		return errors.NewSystemError("백업 대상 파일 읽기 실패", err)
	}

	// 예: 70-persistent-net_20250108_150405.rules
	timestamp := s.clock.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("%s_%s%s", name, timestamp, filepath.Ext(path)))

	if err := s.fileSystem.WriteFile(backupPath, content, constants.RulesFilePermission); err != nil {
		return errors.NewSystemError("백업 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        name,
		"backup_path": backupPath,
	}).Info("Backup created")

	s.prune(name)
	return nil
}

// RestoreLatestBackup은 가장 최근의 백업을 원래 위치에 복원합니다
func (s *BackupService) RestoreLatestBackup(ctx context.Context, name string, path string) error {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		return err
	}
	if len(backupFiles) == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("no backup of %s found", name))
	}

	latest := filepath.Join(s.backupDir, backupFiles[len(backupFiles)-1])
	content, err := s.fileSystem.ReadFile(latest)
	if err != nil {
		return errors.NewSystemError("백업 파일 읽기 실패", err)
	}
	if err := s.fileSystem.WriteFileAtomic(path, content, constants.RulesFilePermission); err != nil {
		return errors.NewSystemError("백업 복원 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        name,
		"backup_file": latest,
		"path":        path,
	}).Info("Backup restored")
	return nil
}

// HasBackup은 백업이 존재하는지 확인합니다
func (s *BackupService) HasBackup(ctx context.Context, name string) bool {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		s.logger.WithError(err).Error("백업 파일 검색 실패")
		return false
	}
	return len(backupFiles) > 0
}

func (s *BackupService) prune(name string) {
	if s.keep <= 0 {
		return
	}
	backupFiles, err := s.findBackupFiles(name)
	if err != nil || len(backupFiles) <= s.keep {
		return
	}
	for _, file := range backupFiles[:len(backupFiles)-s.keep] {
		if err := s.fileSystem.Remove(filepath.Join(s.backupDir, file)); err != nil {
			s.logger.WithError(err).WithField("backup_file", file).Warn("Failed to prune old backup")
		}
	}
}

// findBackupFiles는 이름에 해당하는 백업 파일들을 시간순으로 반환합니다
func (s *BackupService) findBackupFiles(name string) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewSystemError("백업 디렉토리 읽기 실패", err)
	}

	prefix := name + "_"
	backupFiles := lo.Filter(files, func(file string, _ int) bool {
		return strings.HasPrefix(file, prefix)
	})

	// 파일명에 타임스탬프가 포함되어 있으므로 시간순 정렬됨
	sort.Strings(backupFiles)
	return backupFiles, nil
}
