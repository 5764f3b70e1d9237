package udev

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/constants"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

const rulesHeader = `# This file was automatically generated by the lan tool.
# Each line pins a persistent NAME to one network device.
# Manual changes are kept only if they assign a NAME.
`

// FileRuleStore is a UdevRuleStore backed by the persistent-net rules file
type FileRuleStore struct {
	fileSystem interfaces.FileSystem
	backup     interfaces.BackupService
	logger     *logrus.Logger
	path       string
}

// NewFileRuleStore creates a new FileRuleStore. backup may be nil.
func NewFileRuleStore(
	fs interfaces.FileSystem,
	backup interfaces.BackupService,
	logger *logrus.Logger,
	path string,
) *FileRuleStore {
	if path == "" {
		path = constants.UdevPersistentNetRules
	}
	return &FileRuleStore{
		fileSystem: fs,
		backup:     backup,
		logger:     logger,
		path:       path,
	}
}

// Path returns the rules file location
func (s *FileRuleStore) Path() string {
	return s.path
}

// ReadAll parses the rules file into clause lists keyed by the assigned
// NAME. A missing file is an empty rule set.
func (s *FileRuleStore) ReadAll(ctx context.Context) (map[string][]string, error) {
	rules := map[string][]string{}
	if !s.fileSystem.Exists(s.path) {
		return rules, nil
	}

	data, err := s.fileSystem.ReadFile(s.path)
	if err != nil {
		return nil, errors.NewSystemError("udev 규칙 파일 읽기 실패", err)
	}

	for lineNo, line := range joinContinuations(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule := entities.ParseUdevRuleLine(line)
		name, malformed := rule.Field(entities.UdevKeyName)
		for _, clause := range malformed {
			s.logger.WithFields(logrus.Fields{
				"line":   lineNo + 1,
				"clause": clause,
			}).Warn("Malformed udev clause")
		}
		if name == "" {
			s.logger.WithField("line", lineNo+1).Debug("udev rule without NAME ignored")
			continue
		}
		if _, exists := rules[name]; exists {
			s.logger.WithField("name", name).Warn("Duplicate udev rule for NAME, keeping the first")
			continue
		}
		rules[name] = rule.Clauses
	}

	return rules, nil
}

// BackupName is the name backups of the rules file at path are kept under
func BackupName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteAll backs up the current file and atomically replaces it with the
// given rule set, one line per NAME in name order
func (s *FileRuleStore) WriteAll(ctx context.Context, rules map[string][]string) error {
	if s.backup != nil {
		if err := s.backup.CreateBackup(ctx, BackupName(s.path), s.path); err != nil {
			return err
		}
	}

	var b strings.Builder
	b.WriteString(rulesHeader)
	names := lo.Keys(rules)
	sort.Strings(names)
	for _, name := range names {
		clauses := rules[name]
		if len(clauses) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(entities.NewUdevRule(clauses...).String())
		b.WriteString("\n")
	}

	if err := s.fileSystem.WriteFileAtomic(s.path, []byte(b.String()), constants.RulesFilePermission); err != nil {
		return errors.NewSystemError("udev 규칙 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":  s.path,
		"rules": len(names),
	}).Debug("udev rules file written")
	return nil
}

// joinContinuations folds backslash continued lines into one
func joinContinuations(data string) []string {
	var lines []string
	var pending strings.Builder
	for _, line := range strings.Split(data, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if strings.HasSuffix(trimmed, `\`) {
			pending.WriteString(strings.TrimSuffix(trimmed, `\`))
			continue
		}
		pending.WriteString(trimmed)
		lines = append(lines, pending.String())
		pending.Reset()
	}
	if pending.Len() > 0 {
		lines = append(lines, pending.String())
	}
	return lines
}
