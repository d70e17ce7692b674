package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Pipeline stage names
const (
	StageLoad       = "load"
	StageVocabulary = "vocabulary"
	StageVectorize  = "vectorize"
	StageFit        = "fit"
	StagePredict    = "predict"
	StageSave       = "save"
)

// Observer receives every recorded duration, e.g. a metrics histogram
type Observer func(stage string, d time.Duration)

// Profiler tracks execution times per pipeline stage
type Profiler struct {
	mu       sync.RWMutex
	times    map[string][]time.Duration
	observer Observer
}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{
		times: make(map[string][]time.Duration),
	}
}

// SetObserver installs a hook called for every recorded duration
func (p *Profiler) SetObserver(o Observer) {
	p.mu.Lock()
	p.observer = o
	p.mu.Unlock()
}

// Timer represents a running stage measurement
type Timer struct {
	profiler *Profiler
	stage    string
	start    time.Time
}

// Start begins timing a stage. A nil profiler returns a timer that only
// measures.
func (p *Profiler) Start(stage string) *Timer {
	return &Timer{
		profiler: p,
		stage:    stage,
		start:    time.Now(),
	}
}

// Stop completes the timing and records the duration
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	if t.profiler != nil {
		t.profiler.Record(t.stage, d)
	}
	return d
}

// Record manually records a timing
func (p *Profiler) Record(stage string, d time.Duration) {
	p.mu.Lock()
	p.times[stage] = append(p.times[stage], d)
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer(stage, d)
	}
}

// Time runs fn as the named stage
func (p *Profiler) Time(stage string, fn func() error) error {
	timer := p.Start(stage)
	defer timer.Stop()
	return fn()
}

// Stats contains timing statistics
type Stats struct {
	Stage   string
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	P95     time.Duration
}

// GetStats returns timing statistics for a stage
func (p *Profiler) GetStats(stage string) *Stats {
	p.mu.RLock()
	times := append([]time.Duration(nil), p.times[stage]...)
	p.mu.RUnlock()

	if len(times) == 0 {
		return &Stats{Stage: stage}
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	var total time.Duration
	for _, d := range times {
		total += d
	}

	return &Stats{
		Stage:   stage,
		Count:   len(times),
		Total:   total,
		Average: total / time.Duration(len(times)),
		Min:     times[0],
		Max:     times[len(times)-1],
		P95:     times[int(float64(len(times)-1)*0.95)],
	}
}

// GetAllStats returns statistics for all recorded stages, sorted by name
func (p *Profiler) GetAllStats() []*Stats {
	p.mu.RLock()
	stages := make([]string, 0, len(p.times))
	for stage := range p.times {
		stages = append(stages, stage)
	}
	p.mu.RUnlock()

	sort.Strings(stages)

	stats := make([]*Stats, 0, len(stages))
	for _, stage := range stages {
		stats = append(stats, p.GetStats(stage))
	}
	return stats
}

// Reset clears all timing data
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.times = make(map[string][]time.Duration)
	p.mu.Unlock()
}

// PrintReport writes a formatted timing report
func (p *Profiler) PrintReport(w io.Writer) {
	stats := p.GetAllStats()

	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Stage Timing Report\n")
	fmt.Fprintf(w, "══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "%-12s %6s %10s %9s %9s %9s %9s\n",
		"Stage", "Count", "Total", "Avg", "Min", "Max", "P95")
	fmt.Fprintf(w, "──────────────────────────────────────────────────────────\n")

	for _, stat := range stats {
		if stat.Count == 0 {
			continue
		}

		fmt.Fprintf(w, "%-12s %6d %10s %9s %9s %9s %9s\n",
			truncate(stat.Stage, 12),
			stat.Count,
			formatDuration(stat.Total),
			formatDuration(stat.Average),
			formatDuration(stat.Min),
			formatDuration(stat.Max),
			formatDuration(stat.P95),
		)
	}

	fmt.Fprintf(w, "══════════════════════════════════════════════════════════\n")
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
