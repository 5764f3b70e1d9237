package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 재조정(reconcile) 관련 메트릭
	RebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lan_item_table_rebuilds_total",
			Help: "Total number of item table rebuilds",
		},
		[]string{"status"}, // success, failed
	)

	RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lan_item_table_rebuild_duration_seconds",
			Help:    "Time spent rebuilding the item table",
			Buckets: prometheus.DefBuckets,
		},
	)

	Items = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lan_items",
			Help: "Number of reconciled items by kind",
		},
		[]string{"kind"}, // configured, unconfigured, virtual
	)

	// udev 관련 메트릭
	UdevRenames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lan_udev_renames_total",
			Help: "Total number of device renames detected while persisting udev rules",
		},
	)

	UdevWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lan_udev_writes_total",
			Help: "Total number of udev rule set writes",
		},
		[]string{"status"},
	)

	MalformedClauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lan_udev_malformed_clauses_total",
			Help: "Total number of malformed udev clauses skipped",
		},
	)

	// 커밋 관련 메트릭
	Commits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lan_commits_total",
			Help: "Total number of pending operation commits",
		},
		[]string{"operation", "status"},
	)

	// autoinstall 매칭 메트릭
	AutoinstallMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lan_autoinstall_matches_total",
			Help: "Profile interfaces resolved to hardware by matching rule",
		},
		[]string{"rule"}, // mac, bus, module, type, link_up, active, driver, none
	)

	// watch 루프 메트릭
	WatchBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lan_watch_backoff_level",
			Help: "Current backoff level of the reconcile loop (0 = no backoff)",
		},
	)

	// 에러 메트릭
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lan_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"error_type"},
	)

	// 시스템 정보
	Info = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lan_info",
			Help: "Tool information",
		},
		[]string{"version", "arch", "config_backend"},
	)
)

// RecordRebuild는 아이템 테이블 재구성 결과를 기록합니다
func RecordRebuild(status string, duration float64) {
	RebuildsTotal.WithLabelValues(status).Inc()
	RebuildDuration.Observe(duration)
}

// SetItemCounts는 종류별 아이템 수를 설정합니다
func SetItemCounts(configured, unconfigured, virtual int) {
	Items.WithLabelValues("configured").Set(float64(configured))
	Items.WithLabelValues("unconfigured").Set(float64(unconfigured))
	Items.WithLabelValues("virtual").Set(float64(virtual))
}

// RecordUdevWrite는 udev 규칙 저장 결과와 이름 변경 수를 기록합니다
func RecordUdevWrite(status string, renames int) {
	UdevWrites.WithLabelValues(status).Inc()
	UdevRenames.Add(float64(renames))
}

// RecordMalformedClause는 건너뛴 udev 절을 기록합니다
func RecordMalformedClause() {
	MalformedClauses.Inc()
}

// RecordCommit은 커밋 결과를 기록합니다
func RecordCommit(operation, status string) {
	Commits.WithLabelValues(operation, status).Inc()
}

// RecordAutoinstallMatch는 매칭 규칙을 기록합니다
func RecordAutoinstallMatch(rule string) {
	if rule == "" {
		rule = "none"
	}
	AutoinstallMatches.WithLabelValues(rule).Inc()
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetBackoffLevel은 현재 백오프 레벨을 설정합니다
func SetBackoffLevel(level float64) {
	WatchBackoffLevel.Set(level)
}

// SetInfo는 도구 정보를 설정합니다
func SetInfo(version, arch, backend string) {
	Info.WithLabelValues(version, arch, backend).Set(1)
}
