// Package metrics 提供基于Prometheus的指标统计
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics 中继流水线指标
type RelayMetrics struct {
	// RelaysTotal 按处置结果统计的中继次数 (submitted/skipped/failed)
	RelaysTotal *prometheus.CounterVec

	// ProofDuration 证明生成耗时
	ProofDuration prometheus.Histogram

	// SubmissionsTotal 按模式统计的登记处接受次数 (transparent/zk)
	SubmissionsTotal *prometheus.CounterVec

	// TriggerQueueDropped 因队列满被丢弃的触发数
	TriggerQueueDropped prometheus.Counter
}

// NewRelayMetrics 创建并注册中继指标
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		RelaysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "relay",
			Name:      "relays_total",
			Help:      "按处置结果统计的中继操作总数",
		}, []string{"disposition"}),

		ProofDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anchor",
			Subsystem: "relay",
			Name:      "proof_duration_seconds",
			Help:      "Groth16证明生成耗时",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "registry",
			Name:      "submissions_total",
			Help:      "按模式统计的登记处接受总数",
		}, []string{"mode"}),

		TriggerQueueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "anchor",
			Subsystem: "relay",
			Name:      "trigger_queue_dropped_total",
			Help:      "因触发队列满被丢弃的触发总数",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.RelaysTotal, m.ProofDuration, m.SubmissionsTotal, m.TriggerQueueDropped)
	}

	return m
}
