package openaihttp

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "azure2openai"

// Metrics 记录请求、上游调用与流式分帧的指标。nil 的 *Metrics 可以安全调用，不做任何记录。
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	framesTotal      prometheus.Counter
	frameBytesTotal  prometheus.Counter
}

// NewMetrics 创建指标并注册到 registerer。
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total number of inbound requests by route and status",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of inbound requests in seconds, streams included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of Azure requests by operation and status (0 on transport failure)",
			},
			[]string{"operation", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_response_seconds",
				Help:      "Time until Azure response headers were received",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stream_frames_total",
			Help:      "Total number of frames written by the stream reframer",
		}),
		frameBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stream_frame_bytes_total",
			Help:      "Total bytes written by the stream reframer",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.upstreamTotal,
		m.upstreamDuration,
		m.framesTotal,
		m.frameBytesTotal,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) observeUpstream(operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) observeFrame(size int) {
	if m == nil {
		return
	}
	m.framesTotal.Inc()
	m.frameBytesTotal.Add(float64(size))
}
