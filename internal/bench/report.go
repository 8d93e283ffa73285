package bench

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/samcharles93/recgemm/internal/gemm"
)

// DefaultTolerance is the largest acceptable relative error between the
// engine and the reference.
const DefaultTolerance = 1e-9

// Report is the outcome of one benchmark run.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	Dimension int         `json:"dimension"`
	Config    gemm.Config `json:"config"`
	Workers   int         `json:"workers"`
	Autotuned bool        `json:"autotuned"`
	Reference string      `json:"reference"`
	System    SystemInfo  `json:"system"`

	ReferenceStats Stats `json:"reference_stats"`
	EngineStats    Stats `json:"engine_stats"`

	MaxRelativeError float64 `json:"max_relative_error"`
	Tolerance        float64 `json:"tolerance"`
}

// Passed reports whether the engine agreed with the reference within the
// tolerance.
func (r *Report) Passed() bool {
	return r.MaxRelativeError <= r.Tolerance
}

// FLOPs returns the operation count of a single run.
func (r *Report) FLOPs() float64 {
	return FLOPs(r.Dimension, r.Dimension, r.Dimension)
}

// Speedup returns reference mean time over engine mean time.
func (r *Report) Speedup() float64 {
	if r.EngineStats.Mean <= 0 {
		return 0
	}
	return r.ReferenceStats.Mean.Seconds() / r.EngineStats.Mean.Seconds()
}

// WriteText prints the human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== recgemm %dx%d ===\n", r.Dimension, r.Dimension)
	fmt.Fprintf(&sb, "Run:        %s\n", r.RunID)
	fmt.Fprintf(&sb, "Config:     %s\n", r.Config)
	fmt.Fprintf(&sb, "Workers:    %d\n", r.Workers)
	if r.Autotuned {
		fmt.Fprintf(&sb, "Autotuned:  yes\n")
	}
	fmt.Fprintf(&sb, "System:     %s/%s %s, %d CPUs, GOMAXPROCS %d",
		r.System.GOOS, r.System.GOARCH, r.System.GoVersion, r.System.CPUs, r.System.GOMAXPROCS)
	if len(r.System.Features) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(r.System.Features, " "))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Maximum relative error: %g (tolerance %g)\n", r.MaxRelativeError, r.Tolerance)
	fmt.Fprintf(&sb, "%-10s %12s %12s %12s %12s %16s\n", "", "min", "max", "avg", "std", "rate")
	writeStatsRow(&sb, "Reference:", r.ReferenceStats, r.FLOPs())
	writeStatsRow(&sb, "Optimized:", r.EngineStats, r.FLOPs())
	if s := r.Speedup(); s > 0 {
		fmt.Fprintf(&sb, "\nSpeedup:    %.2fx over %s\n", s, r.Reference)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeStatsRow(sb *strings.Builder, label string, s Stats, flops float64) {
	fmt.Fprintf(sb, "%-10s %12.6f %12.6f %12.6f %12.6f %16s\n",
		label,
		s.Min.Seconds(), s.Max.Seconds(), s.Mean.Seconds(), s.StdDev.Seconds(),
		humanize.SIWithDigits(s.Rate(flops), 2, "FLOP/s"))
}

// WriteJSON encodes the report as indented JSON. A non-finite relative error
// is encoded as the largest float64, since JSON has no infinity.
func (r *Report) WriteJSON(w io.Writer) error {
	out := *r
	if math.IsInf(out.MaxRelativeError, 0) || math.IsNaN(out.MaxRelativeError) {
		out.MaxRelativeError = math.MaxFloat64
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
