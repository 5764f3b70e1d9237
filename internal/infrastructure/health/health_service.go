package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/domain/interfaces"
)

// HealthService reports the state of the reconcile loop over HTTP
type HealthService struct {
	mu              sync.RWMutex
	clock           interfaces.Clock
	logger          *logrus.Logger
	startTime       time.Time
	lastReconcile   time.Time
	sourcesHealthy  bool
	sourceError     error
	items           int
	unconfigured    int
	virtual         int
	failedRebuilds  int64
	restartRequired bool
	backend         string
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	LastCheck  string                 `json:"last_check"`
	Components map[string]interface{} `json:"components"`
	Statistics map[string]interface{} `json:"statistics"`
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, logger *logrus.Logger, backend string) *HealthService {
	return &HealthService{
		clock:     clock,
		logger:    logger,
		startTime: clock.Now(),
		backend:   backend,
	}
}

// RecordReconcile stores the outcome of one reconcile pass
func (h *HealthService) RecordReconcile(items, unconfigured, virtual int, restartRequired bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastReconcile = h.clock.Now()
	h.sourcesHealthy = err == nil
	h.sourceError = err
	if err != nil {
		h.failedRebuilds++
		return
	}
	h.items = items
	h.unconfigured = unconfigured
	h.virtual = virtual
	h.restartRequired = restartRequired
}

// ServeHTTP handles the HTTP health check endpoint
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := h.buildHealthResponse()

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("failed to encode health check response")
	}
}

func (h *HealthService) buildHealthResponse() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()

	components := map[string]interface{}{
		"sources": map[string]interface{}{
			"healthy": h.sourcesHealthy,
			"error":   h.formatError(h.sourceError),
		},
		"config_store": map[string]interface{}{
			"backend": h.backend,
		},
	}

	statistics := map[string]interface{}{
		"items":            h.items,
		"unconfigured":     h.unconfigured,
		"virtual":          h.virtual,
		"failed_rebuilds":  h.failedRebuilds,
		"restart_required": h.restartRequired,
		"uptime":           h.formatUptime(now.Sub(h.startTime)),
	}

	lastCheck := ""
	if !h.lastReconcile.IsZero() {
		lastCheck = h.lastReconcile.Format(time.RFC3339)
	}

	return HealthResponse{
		Status:     h.determineOverallStatus(),
		Timestamp:  now.Format(time.RFC3339),
		LastCheck:  lastCheck,
		Components: components,
		Statistics: statistics,
	}
}

// determineOverallStatus: sources down is unhealthy, a pending restart is degraded
func (h *HealthService) determineOverallStatus() HealthStatus {
	if !h.sourcesHealthy {
		return StatusUnhealthy
	}
	if h.restartRequired {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *HealthService) formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (h *HealthService) formatUptime(duration time.Duration) string {
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
