// Package profiler - Stage timing for the detection pipeline.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Pipeline stage names recorded by the viewer and the detect command.
const (
	StageLoad     = "load"
	StageDetect   = "detect"
	StageAnnotate = "annotate"
)

// StageStats summarises the recorded durations of one stage.
type StageStats struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// Avg returns the mean duration, or 0 before the first sample.
func (s StageStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// MetricStats summarises a custom numeric metric, e.g. detections per image.
type MetricStats struct {
	Name  string
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// StageProfiler records per-stage timings and custom metrics.
//
// It is safe for concurrent use.
type StageProfiler struct {
	mu      sync.RWMutex
	start   time.Time
	stages  map[string]*StageStats
	metrics map[string]*MetricStats
	now     func() time.Time
}

// NewStageProfiler creates an empty profiler.
func NewStageProfiler() *StageProfiler {
	return &StageProfiler{
		start:   time.Now(),
		stages:  make(map[string]*StageStats),
		metrics: make(map[string]*MetricStats),
		now:     time.Now,
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
//   - name: The name of the operation to track
//
// Returns:
//   - A function to call when the operation completes. It returns the measured duration.
//
// Example:
//
// ```go
//
//	done := p.StartOperation(profiler.StageDetect)
//	dets, err := engine.Detect(ctx, frame)
//	log.Printf("detect took %v", done())
//
// ```
func (p *StageProfiler) StartOperation(name string) func() time.Duration {
	start := p.now()
	return func() time.Duration {
		d := p.now().Sub(start)
		p.Record(name, d)
		return d
	}
}

// Record adds a duration sample for a stage.
func (p *StageProfiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stages[name]
	if !ok {
		s = &StageStats{Name: name, Min: d, Max: d}
		p.stages[name] = s
	}
	s.Count++
	s.Total += d
	s.Last = d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// RecordMetric records a custom metric value.
//
// Arguments:
//   - name: The name of the metric
//   - value: The metric value to record
func (p *StageProfiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.metrics[name]
	if !ok {
		m = &MetricStats{Name: name, Min: value, Max: value}
		p.metrics[name] = m
	}
	m.Count++
	m.Sum += value
	if value < m.Min {
		m.Min = value
	}
	if value > m.Max {
		m.Max = value
	}
}

// Stage returns a snapshot of one stage's statistics.
func (p *StageProfiler) Stage(name string) (StageStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.stages[name]
	if !ok {
		return StageStats{}, false
	}
	return *s, true
}

// Stages returns snapshots of every stage sorted by name.
func (p *StageProfiler) Stages() []StageStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]StageStats, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report writes a human-readable summary of all stages and metrics.
func (p *StageProfiler) Report(w io.Writer) {
	stages := p.Stages()

	p.mu.RLock()
	metrics := make([]MetricStats, 0, len(p.metrics))
	for _, m := range p.metrics {
		metrics = append(metrics, *m)
	}
	uptime := time.Since(p.start)
	p.mu.RUnlock()
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Name < metrics[j].Name })

	fmt.Fprintf(w, "PIPELINE TIMINGS (uptime %v)\n", uptime.Truncate(time.Millisecond))
	for _, s := range stages {
		fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
			s.Name,
			s.Avg().Truncate(time.Microsecond),
			s.Min.Truncate(time.Microsecond),
			s.Max.Truncate(time.Microsecond),
			s.Count)
	}
	for _, m := range metrics {
		fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
			m.Name, m.Sum/float64(m.Count), m.Min, m.Max, m.Count)
	}
}
