package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/entities"
	"github.com/yast/yast-network-sub000/internal/domain/errors"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
	"github.com/yast/yast-network-sub000/pkg/utils"
	"gopkg.in/yaml.v3"
)

// document accepts the profile either bare or nested under networking
type document struct {
	Networking *entities.Profile `yaml:"networking"`
}

// Loader reads autoinstall profiles from YAML files
type Loader struct {
	fileSystem interfaces.FileSystem
	validate   *validator.Validate
	logger     *logrus.Logger
}

// NewLoader creates a new Loader
func NewLoader(fs interfaces.FileSystem, logger *logrus.Logger) *Loader {
	return &Loader{
		fileSystem: fs,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Load reads and validates the profile at path
func (l *Loader) Load(path string) (*entities.Profile, error) {
	data, err := l.fileSystem.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("reading profile %s failed", path), err)
	}
	return l.Parse(data)
}

// Parse decodes and validates profile YAML
func (l *Loader) Parse(data []byte) (*entities.Profile, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValidationError("profile is not valid YAML", err)
	}

	profile := doc.Networking
	if profile == nil {
		profile = &entities.Profile{}
		if err := yaml.Unmarshal(data, profile); err != nil {
			return nil, errors.NewValidationError("profile is not valid YAML", err)
		}
	}

	if err := l.validate.Struct(profile); err != nil {
		return nil, errors.NewValidationError("profile is invalid", err)
	}

	// <type>-id-<mac> 형식은 MAC 자체도 유효해야 함
	for _, pi := range profile.Interfaces {
		identity := pi.Identity()
		if identity.Kind != entities.IdentityByMac {
			continue
		}
		if err := utils.ValidateMACAddress(identity.MAC); err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("profile interface %s is invalid", pi.Device), err)
		}
	}

	l.logger.WithFields(logrus.Fields{
		"interfaces": len(profile.Interfaces),
		"modules":    len(profile.Modules),
	}).Debug("Autoinstall profile loaded")
	return profile, nil
}
