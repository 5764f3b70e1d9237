package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/infrastructure/adapters"
)

// stepClock는 호출마다 1초씩 증가하는 테스트용 Clock입니다
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestBackupService(t *testing.T, keep int) (*BackupService, string) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	dir := filepath.Join(t.TempDir(), "backups")
	clock := &stepClock{now: time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC)}
	svc := NewBackupService(adapters.NewRealFileSystem(), clock, logger, dir, keep)
	return svc.(*BackupService), dir
}

func TestBackupService_CreateBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("원본 파일이 없으면 아무것도 하지 않음", func(t *testing.T) {
		svc, dir := newTestBackupService(t, 0)
		require.NoError(t, svc.CreateBackup(ctx, "rules", filepath.Join(t.TempDir(), "missing.rules")))
		assert.False(t, svc.HasBackup(ctx, "rules"))
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("백업 생성과 복원", func(t *testing.T) {
		svc, dir := newTestBackupService(t, 0)
		path := filepath.Join(t.TempDir(), "70-persistent-net.rules")
		require.NoError(t, os.WriteFile(path, []byte("first\n"), 0644))

		require.NoError(t, svc.CreateBackup(ctx, "70-persistent-net", path))
		assert.True(t, svc.HasBackup(ctx, "70-persistent-net"))
		assert.FileExists(t, filepath.Join(dir, "70-persistent-net_20250108_150406.rules"))

		require.NoError(t, os.WriteFile(path, []byte("second\n"), 0644))
		require.NoError(t, svc.RestoreLatestBackup(ctx, "70-persistent-net", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first\n", string(data))
	})

	t.Run("오래된 백업 정리", func(t *testing.T) {
		svc, dir := newTestBackupService(t, 2)
		path := filepath.Join(t.TempDir(), "net.rules")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		for i := 0; i < 4; i++ {
			require.NoError(t, svc.CreateBackup(ctx, "net", path))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "net_20250108_150408.rules", entries[0].Name())
		assert.Equal(t, "net_20250108_150409.rules", entries[1].Name())
	})
}

func TestBackupService_RestoreLatestBackup_NoBackup(t *testing.T) {
	svc, _ := newTestBackupService(t, 0)
	err := svc.RestoreLatestBackup(context.Background(), "net", filepath.Join(t.TempDir(), "net.rules"))
	assert.True(t, errors.IsNotFoundError(err))
}
