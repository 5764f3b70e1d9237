package services

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/yast/yast-network-sub000/internal/domain/constants"
)

// Session carries the state shared by one configuration run: the
// "modified" and "restart required" flags and the target architecture.
// Access is not synchronized; callers serialize all operations.
type Session struct {
	ID   string
	Arch string

	modified        bool
	restartRequired bool
}

// NewSession creates a new Session for the given architecture
func NewSession(arch string) *Session {
	return &Session{
		ID:   uuid.NewString(),
		Arch: arch,
	}
}

// MarkModified records that configuration was changed
func (s *Session) MarkModified() {
	s.modified = true
}

// Modified reports whether configuration was changed in this session
func (s *Session) Modified() bool {
	return s.modified
}

// RequireRestart records that the network service must be restarted
func (s *Session) RequireRestart() {
	s.restartRequired = true
}

// RestartRequired reports whether a restart was requested
func (s *Session) RestartRequired() bool {
	return s.restartRequired
}

// RequiresLayer2 reports whether bond slaves must declare layer 2 support
// on this architecture
func (s *Session) RequiresLayer2() bool {
	return lo.Contains(constants.Layer2Architectures, s.Arch)
}
