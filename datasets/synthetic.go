package datasets

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/goscd/core/dataset"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed uint64 = 7

// noiseScale is the amplitude of the uniform noise added to each feature.
const noiseScale = 0.001

// GenerateSynthetic draws true weights x_j uniformly from [0,1) and for
// each sample a label b_i, either ±1 with equal probability (binary) or
// uniform in [0,1). Features are a_j[i] = b_i*x_j + 0.001*u with u uniform
// in [0,1). Output is identical for identical arguments.
func GenerateSynthetic(numSamples, numFeatures int, binary bool, seed uint64) (*dataset.Dataset, error) {
	ds, err := dataset.New(numSamples, numFeatures)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	x := make([]float32, numFeatures)
	for j := range x {
		x[j] = rng.Float32()
	}

	labels := ds.Labels()
	for i := range labels {
		if binary {
			if rng.Float32() > 0.5 {
				labels[i] = 1
			} else {
				labels[i] = -1
			}
		} else {
			labels[i] = rng.Float32()
		}
		for j, w := range x {
			ds.Set(i, j, labels[i]*w+noiseScale*rng.Float32())
		}
	}
	return ds, nil
}
