// Package simd provides the 8-lane float32 kernels used by the vectorized
// coordinate-descent trainers.
//
// Kernels operate on Lanes-wide blocks the way a 256-bit register would:
// eight independent gradient accumulators, one multiply-add per lane per
// block, and a final scalar reduction of the lanes in index order. Element
// wise steps that have no cross-lane dependency delegate to vek32, which
// uses AVX2/NEON assembly when the CPU supports it.
//
// Callers must pass slices whose length is a multiple of Lanes; the kernels
// do not handle tails.
package simd
