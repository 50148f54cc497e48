package monitoring

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Metric 指标
type Metric struct {
	Name   string            `json:"name"`
	Type   MetricType        `json:"type"`
	Value  float64           `json:"value"`
	Labels map[string]string `json:"labels,omitempty"`
	Help   string            `json:"help,omitempty"`
}

// MetricsCollector 指标收集器，按名称和标签聚合，只保留当前值
type MetricsCollector struct {
	metrics     map[string]*Metric
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:   make(map[string]*Metric),
		startTime: time.Now(),
	}
}

// IncrCounter 增加计数器
func (mc *MetricsCollector) IncrCounter(name, help string, value float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	m := mc.lookup(name, help, MetricTypeCounter, labels)
	m.Value += value
}

// SetGauge 设置仪表
func (mc *MetricsCollector) SetGauge(name, help string, value float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	m := mc.lookup(name, help, MetricTypeGauge, labels)
	m.Value = value
}

// lookup 调用方需持有写锁
func (mc *MetricsCollector) lookup(name, help string, typ MetricType, labels map[string]string) *Metric {
	key := name + formatLabels(labels)
	m, ok := mc.metrics[key]
	if !ok {
		copied := make(map[string]string, len(labels))
		for k, v := range labels {
			copied[k] = v
		}
		m = &Metric{Name: name, Type: typ, Labels: copied, Help: help}
		mc.metrics[key] = m
	}
	return m
}

// Value 返回指标当前值，不存在时为 0
func (mc *MetricsCollector) Value(name string, labels map[string]string) float64 {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	if m, ok := mc.metrics[name+formatLabels(labels)]; ok {
		return m.Value
	}
	return 0
}

// snapshot 按键排序复制所有指标，并刷新运行时指标
func (mc *MetricsCollector) snapshot() []Metric {
	mc.SetGauge("process_uptime_seconds", "Seconds since the service started", mc.GetUptime().Seconds(), nil)
	mc.SetGauge("go_goroutines", "Number of goroutines", float64(runtime.NumGoroutine()), nil)

	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	keys := make([]string, 0, len(mc.metrics))
	for k := range mc.metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, *mc.metrics[k])
	}
	return out
}

// ExportPrometheus 导出Prometheus文本格式
func (mc *MetricsCollector) ExportPrometheus() string {
	var b strings.Builder
	lastName := ""
	for _, metric := range mc.snapshot() {
		if metric.Name != lastName {
			help := metric.Help
			if help == "" {
				help = fmt.Sprintf("Metric %s", metric.Name)
			}
			fmt.Fprintf(&b, "# HELP %s %s\n", metric.Name, help)
			fmt.Fprintf(&b, "# TYPE %s %s\n", metric.Name, metric.Type)
			lastName = metric.Name
		}
		fmt.Fprintf(&b, "%s%s %g\n", metric.Name, formatLabels(metric.Labels), metric.Value)
	}
	return b.String()
}

// ExportJSON 导出JSON格式
func (mc *MetricsCollector) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(mc.snapshot(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// PredictionMetrics 预测服务的业务指标
type PredictionMetrics struct {
	collector *MetricsCollector
}

// Prediction outcomes used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeSchemaMismatch = "schema_mismatch"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeError          = "error"
)

// NewPredictionMetrics 创建预测指标
func NewPredictionMetrics(collector *MetricsCollector) *PredictionMetrics {
	return &PredictionMetrics{collector: collector}
}

// RecordPrediction 记录一次预测请求
func (pm *PredictionMetrics) RecordPrediction(channel, outcome string, duration time.Duration) {
	pm.collector.IncrCounter("predictions_total", "Prediction requests by channel and outcome", 1,
		map[string]string{"channel": channel, "outcome": outcome})
	if outcome == OutcomeOK {
		pm.collector.IncrCounter("prediction_duration_seconds_sum", "Total time spent in successful predictions", duration.Seconds(),
			map[string]string{"channel": channel})
	}
}

// Collector 返回底层收集器
func (pm *PredictionMetrics) Collector() *MetricsCollector {
	return pm.collector
}
