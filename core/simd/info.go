package simd

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/viterin/vek/vek32"
)

// RuntimeInfo describes the CPU the kernels run on.
type RuntimeInfo struct {
	Brand         string
	LogicalCores  int
	PhysicalCores int
	// AVX2FMA is true when the CPU has 256-bit vectors with fused multiply-add.
	AVX2FMA bool
	AVX512  bool
	NEON    bool
	// Accelerated reports whether vek32 dispatches to assembly.
	Accelerated bool
	Features    []string
}

// Info returns the CPU feature report.
func Info() RuntimeInfo {
	vi := vek32.Info()
	return RuntimeInfo{
		Brand:         cpuid.CPU.BrandName,
		LogicalCores:  cpuid.CPU.LogicalCores,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		AVX2FMA:       cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3),
		AVX512:        cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		NEON:          cpuid.CPU.Supports(cpuid.ASIMD),
		Accelerated:   vi.Acceleration,
		Features:      vi.CPUFeatures,
	}
}
