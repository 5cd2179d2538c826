// Package observ measures the phases of a run.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration of one phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	open  bool
}

// Timer tracks the phases of one module or one run. It is not safe for
// concurrent use; the pipeline keeps one timer per module.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now(), open: true})
	return len(t.phases) - 1
}

// End finishes a phase by its index. Ending a phase twice keeps the first
// duration.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || !t.phases[idx].open {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
	p.open = false
}

// Track starts a phase and returns the function ending it.
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// Phases returns the recorded phases.
func (t *Timer) Phases() []Phase {
	return t.phases
}

// Summary renders the phases as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	width := len("total")
	for _, p := range report.Phases {
		width = max(width, len(p.Name))
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-*s %9.2f ms", width, p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-*s %9.2f ms\n", width, "total", report.TotalMS)
	return b.String()
}

// PhaseReport — сериализуемое описание фазы.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report — агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists the finished phases; open phases are left out.
func (t *Timer) Report() Report {
	report := Report{Phases: make([]PhaseReport, 0, len(t.phases))}
	var total time.Duration
	for _, phase := range t.phases {
		if phase.open {
			continue
		}
		total += phase.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       phase.Name,
			DurationMS: millis(phase.Dur),
			Note:       phase.Note,
		})
	}
	report.TotalMS = millis(total)
	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
