package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/go-sql-driver/mysql"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
)

// Schema creates the key/value table the store works on
const Schema = `
CREATE TABLE IF NOT EXISTS interface_config (
	device     VARCHAR(15)  NOT NULL,
	field      VARCHAR(64)  NOT NULL,
	value      TEXT         NOT NULL,
	updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (device, field)
)`

// presenceField is written for every configuration so one without fields
// still exists
const presenceField = ""

// MySQLConfigStore는 MySQL 기반의 ConfigStore 구현체입니다.
// 하나의 설정은 device별 field/value 행 집합으로 저장됩니다.
type MySQLConfigStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLConfigStore는 새로운 MySQLConfigStore를 생성합니다
func NewMySQLConfigStore(db *sql.DB, logger *logrus.Logger) *MySQLConfigStore {
	return &MySQLConfigStore{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema는 테이블이 없으면 생성합니다
func (r *MySQLConfigStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.NewSystemError("스키마 생성 실패", err)
	}
	return nil
}

// List는 저장된 설정 이름을 반환합니다
func (r *MySQLConfigStore) List(ctx context.Context, kind entities.DeviceType) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT device FROM interface_config ORDER BY device`)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}

	if kind == entities.TypeUnknown {
		return names, nil
	}
	return lo.Filter(names, func(name string, _ int) bool {
		cfg, err := r.Read(ctx, name)
		if err != nil {
			r.logger.WithError(err).WithField("config", name).Warn("Skipping unreadable configuration")
			return false
		}
		return cfg.DeviceType() == kind
	}), nil
}

// Read는 설정 하나를 조회합니다
func (r *MySQLConfigStore) Read(ctx context.Context, name string) (*entities.InterfaceConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT field, value FROM interface_config WHERE device = ?`, name)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	fields := map[string]string{}
	found := false
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		found = true
		if field != presenceField {
			fields[field] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}
	if !found {
		return nil, errors.NewNotFoundError(fmt.Sprintf("configuration %s not found", name))
	}

	return entities.ParseInterfaceConfig(name, fields), nil
}

// Write는 설정을 트랜잭션으로 교체합니다
func (r *MySQLConfigStore) Write(ctx context.Context, name string, cfg *entities.InterfaceConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewSystemError("트랜잭션 시작 실패", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM interface_config WHERE device = ?`, name); err != nil {
		return errors.NewSystemError("기존 설정 삭제 실패", err)
	}

	fields := cfg.ToFields()
	keys := lo.Keys(fields)
	sort.Strings(keys)
	for _, key := range append([]string{presenceField}, keys...) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interface_config (device, field, value) VALUES (?, ?, ?)`,
			name, key, fields[key],
		); err != nil {
			return errors.NewSystemError("설정 저장 실패", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewSystemError("트랜잭션 커밋 실패", err)
	}

	r.logger.WithFields(logrus.Fields{
		"config": name,
		"fields": len(keys),
	}).Debug("Configuration stored")
	return nil
}

// Delete는 설정을 삭제합니다. 없는 설정을 삭제해도 오류가 아닙니다.
func (r *MySQLConfigStore) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM interface_config WHERE device = ?`, name); err != nil {
		return errors.NewSystemError("설정 삭제 실패", err)
	}
	return nil
}
