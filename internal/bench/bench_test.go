package bench

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/recgemm/internal/gemm"
	"github.com/samcharles93/recgemm/internal/logger"
	"github.com/samcharles93/recgemm/internal/matrix"
)

func quietContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func smallConfig() gemm.Config {
	cfg := gemm.DefaultConfig()
	cfg.Threshold = 16
	cfg.Workers = 2
	return cfg
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]time.Duration{
		4 * time.Second,
		2 * time.Second,
		6 * time.Second,
	})
	assert.Equal(t, 3, s.Runs)
	assert.Equal(t, 2*time.Second, s.Min)
	assert.Equal(t, 6*time.Second, s.Max)
	assert.Equal(t, 4*time.Second, s.Mean)
	// Population deviation: sqrt(((2)^2 + 0 + (2)^2) / 3).
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.StdDev.Seconds(), 1e-9)
}

func TestComputeStatsSingleSample(t *testing.T) {
	s := ComputeStats([]time.Duration{150 * time.Millisecond})
	assert.Equal(t, 150*time.Millisecond, s.Min)
	assert.Equal(t, s.Min, s.Max)
	assert.Equal(t, s.Min, s.Mean)
	assert.Zero(t, s.StdDev)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))
	assert.Zero(t, Stats{}.Rate(1e9))
}

func TestStatsRate(t *testing.T) {
	s := Stats{Mean: 500 * time.Millisecond}
	assert.InDelta(t, 2e9, s.Rate(1e9), 1)
}

func TestFLOPs(t *testing.T) {
	assert.Equal(t, 2e6, FLOPs(100, 100, 100))
	assert.Equal(t, float64(2*3*4*5), FLOPs(3, 4, 5))
}

func TestSinCosInputs(t *testing.T) {
	a, b := SinCosInputs(3, 4, 5)
	assert.Equal(t, 3, a.Rows)
	assert.Equal(t, 4, a.Cols)
	assert.Equal(t, 4, b.Rows)
	assert.Equal(t, 5, b.Cols)
	assert.InDelta(t, math.Sin(3)+2, a.At(1, 2), 0)
	assert.InDelta(t, math.Cos(5)+2, b.At(3, 2), 0)
	for _, v := range a.Data {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 3.0)
	}
}

func TestMaxRelativeError(t *testing.T) {
	x := matrix.FromData(2, 2, []float64{1, 2, 0, -4})
	y := matrix.FromData(2, 2, []float64{1, 2.002, 0, -4})

	got, err := MaxRelativeError(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.001, got, 1e-12)

	got, err = MaxRelativeError(x, x)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestMaxRelativeErrorZeroAgainstNonZero(t *testing.T) {
	x := matrix.FromData(1, 2, []float64{0, 1})
	y := matrix.FromData(1, 2, []float64{1e-30, 1})

	got, err := MaxRelativeError(x, y)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}

func TestMaxRelativeErrorShapeMismatch(t *testing.T) {
	_, err := MaxRelativeError(matrix.New(2, 3), matrix.New(3, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestMaxRelativeErrorStridedViews(t *testing.T) {
	parent := matrix.New(4, 4)
	for i := range parent.Data {
		parent.Data[i] = float64(i + 1)
	}
	x := parent.View(1, 3, 1, 3)
	y := x.Clone()
	// Elements outside the view must not be compared.
	parent.Set(0, 0, -1)

	got, err := MaxRelativeError(x, y)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestReferencesAgree(t *testing.T) {
	for _, dims := range [][3]int{{1, 1, 1}, {7, 5, 3}, {33, 17, 40}} {
		m, p, n := dims[0], dims[1], dims[2]
		a, b := SinCosInputs(m, p, n)

		cGonum := matrix.New(m, n)
		cNaive := matrix.New(m, n)
		Gonum{}.MultiplyAccumulate(a, b, cGonum)
		Naive{}.MultiplyAccumulate(a, b, cNaive)

		cEngine := matrix.New(m, n)
		e, err := gemm.New(smallConfig())
		require.NoError(t, err)
		require.NoError(t, e.MultiplyAccumulate(a, b, cEngine))

		rel, err := MaxRelativeError(cGonum, cNaive)
		require.NoError(t, err)
		assert.Less(t, rel, DefaultTolerance, "gonum vs naive %v", dims)

		rel, err = MaxRelativeError(cEngine, cGonum)
		require.NoError(t, err)
		assert.Less(t, rel, DefaultTolerance, "engine vs gonum %v", dims)
	}
}

func TestGonumReferenceEmptyDepth(t *testing.T) {
	a := matrix.New(3, 0)
	b := matrix.New(0, 2)
	c := matrix.FromData(3, 2, []float64{1, 2, 3, 4, 5, 6})
	Gonum{}.MultiplyAccumulate(a, b, c)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, c.Data)
}

func TestReferenceByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"gonum", "gonum"},
		{"BLAS", "gonum"},
		{"", "gonum"},
		{" naive ", "naive"},
	}
	for _, tc := range tests {
		ref, err := ReferenceByName(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, ref.Name())
	}

	_, err := ReferenceByName("mkl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "naive")
}

func TestDetectSystem(t *testing.T) {
	sys := DetectSystem()
	assert.NotEmpty(t, sys.GoVersion)
	assert.NotEmpty(t, sys.GOOS)
	assert.NotEmpty(t, sys.GOARCH)
	assert.Positive(t, sys.CPUs)
	assert.Positive(t, sys.GOMAXPROCS)
}

func TestRunnerPasses(t *testing.T) {
	r := &Runner{Config: smallConfig(), Reference: Naive{}}
	report, err := r.Run(quietContext(), Options{Dimension: 40, Runs: 3, Warmup: 1})
	require.NoError(t, err)

	assert.True(t, report.Passed(), "max relative error %g", report.MaxRelativeError)
	assert.Less(t, report.MaxRelativeError, DefaultTolerance)
	assert.Equal(t, DefaultTolerance, report.Tolerance)
	assert.Equal(t, 40, report.Dimension)
	assert.Equal(t, "naive", report.Reference)
	assert.Equal(t, 2, report.Workers)
	assert.False(t, report.Autotuned)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.ReferenceStats.Runs)
	assert.Equal(t, 3, report.EngineStats.Runs)
	assert.LessOrEqual(t, report.EngineStats.Min, report.EngineStats.Max)
}

func TestRunnerDefaultsToGonum(t *testing.T) {
	r := &Runner{Config: smallConfig()}
	report, err := r.Run(quietContext(), Options{Dimension: 17, Runs: 1})
	require.NoError(t, err)
	assert.Equal(t, "gonum", report.Reference)
	assert.True(t, report.Passed())
}

func TestRunnerAutotune(t *testing.T) {
	tuner := gemm.NewAutotuner()
	r := &Runner{Config: smallConfig(), Reference: Naive{}, Tuner: tuner}
	report, err := r.Run(quietContext(), Options{Dimension: 24, Runs: 1})
	require.NoError(t, err)

	assert.True(t, report.Autotuned)
	cfg, ok := tuner.Lookup(gemm.Shape{M: 24, P: 24, N: 24})
	require.True(t, ok)
	assert.Equal(t, cfg, report.Config)
	assert.True(t, report.Passed())
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := &Runner{Config: smallConfig()}
	for _, opts := range []Options{
		{Dimension: 0, Runs: 1},
		{Dimension: 4, Runs: 0},
		{Dimension: 4, Runs: 1, Warmup: -1},
		{Dimension: 4, Runs: 1, Tolerance: -1},
	} {
		_, err := r.Run(quietContext(), opts)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%+v", opts)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.TileRows = 0
	r := &Runner{Config: cfg}
	_, err := r.Run(quietContext(), Options{Dimension: 4, Runs: 1})
	assert.ErrorIs(t, err, gemm.ErrInvalidConfig)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(quietContext())
	cancel()

	r := &Runner{Config: smallConfig()}
	_, err := r.Run(ctx, Options{Dimension: 8, Runs: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func sampleReport() *Report {
	return &Report{
		RunID:     "00000000-0000-0000-0000-000000000001",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Dimension: 64,
		Config:    smallConfig(),
		Workers:   2,
		Reference: "gonum",
		System:    SystemInfo{GoVersion: "go1.26", GOOS: "linux", GOARCH: "amd64", CPUs: 8, GOMAXPROCS: 8, Features: []string{"avx2", "fma"}},
		ReferenceStats: Stats{
			Runs: 2, Min: 2 * time.Millisecond, Max: 4 * time.Millisecond,
			Mean: 3 * time.Millisecond, StdDev: time.Millisecond,
		},
		EngineStats: Stats{
			Runs: 2, Min: time.Millisecond, Max: time.Millisecond,
			Mean: time.Millisecond,
		},
		MaxRelativeError: 1e-15,
		Tolerance:        DefaultTolerance,
	}
}

func TestReportSpeedupAndPassed(t *testing.T) {
	r := sampleReport()
	assert.InDelta(t, 3.0, r.Speedup(), 1e-9)
	assert.True(t, r.Passed())

	r.MaxRelativeError = 1e-3
	assert.False(t, r.Passed())
	r.MaxRelativeError = math.NaN()
	assert.False(t, r.Passed())

	r.EngineStats.Mean = 0
	assert.Zero(t, r.Speedup())
}

func TestReportWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteText(&buf))
	out := buf.String()

	for _, want := range []string{
		"=== recgemm 64x64 ===",
		"Maximum relative error: 1e-15",
		"Reference:",
		"Optimized:",
		"FLOP/s",
		"Speedup:    3.00x over gonum",
		"[avx2 fma]",
		"threshold=16",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Reference:"), strings.Index(out, "Optimized:"))
}

func TestReportWriteJSON(t *testing.T) {
	want := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, want.WriteJSON(&buf))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, want.Config, got.Config)
	assert.Equal(t, want.ReferenceStats, got.ReferenceStats)
	assert.Equal(t, want.System, got.System)
	assert.Equal(t, want.MaxRelativeError, got.MaxRelativeError)
	assert.Contains(t, buf.String(), `"mean_ns": 3000000`)
}

func TestReportWriteJSONInfiniteError(t *testing.T) {
	r := sampleReport()
	r.MaxRelativeError = math.Inf(1)

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, math.MaxFloat64, got.MaxRelativeError)
	assert.True(t, math.IsInf(r.MaxRelativeError, 1), "WriteJSON must not modify the report")
}
