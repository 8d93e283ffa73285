package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/sys/cpu"

	"github.com/samcharles93/recgemm/internal/bench"
	"github.com/samcharles93/recgemm/internal/gemm"
)

type output struct {
	System   bench.SystemInfo `json:"system"`
	Features map[string]bool  `json:"features"`
	Defaults gemm.Config      `json:"default_config"`
}

func main() {
	features := map[string]bool{
		"SSE2":     cpu.X86.HasSSE2,
		"SSE41":    cpu.X86.HasSSE41,
		"AVX":      cpu.X86.HasAVX,
		"AVX2":     cpu.X86.HasAVX2,
		"FMA":      cpu.X86.HasFMA,
		"AVX512F":  cpu.X86.HasAVX512F,
		"AVX512DQ": cpu.X86.HasAVX512DQ,
		"AVX512VL": cpu.X86.HasAVX512VL,
		"ASIMD":    cpu.ARM64.HasASIMD,
		"FP":       cpu.ARM64.HasFP,
		"SVE":      cpu.ARM64.HasSVE,
		"SVE2":     cpu.ARM64.HasSVE2,
	}

	out := output{
		System:   bench.DetectSystem(),
		Features: features,
		Defaults: gemm.DefaultConfig(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
