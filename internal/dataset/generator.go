// Package dataset owns the metrics schema on both stores: creating it,
// seeding the source with synthetic rows and emptying the destination.
package dataset

import (
	"math/rand/v2"

	"github.com/BartekS5/copybench/pkg/models"
)

const (
	DefaultString = "Hello World!"
	BinaryLength  = 100
	maxInt1       = 10000
	minInt2       = -10000
)

// Generator draws synthetic metric records:
// metric_int1 uniform in [0, 10000], metric_int2 uniform in [-10000, 0],
// both floats uniform in [0, 1), a fixed string and 100 random bytes.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a deterministic generator for the given seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a record with ID left at zero; the store assigns it.
func (g *Generator) Next() models.MetricRecord {
	bin := make([]byte, BinaryLength)
	for i := range bin {
		bin[i] = byte(g.rng.UintN(256))
	}
	return models.MetricRecord{
		Int1:   int32(g.rng.IntN(maxInt1 + 1)),
		Int2:   int32(minInt2 + g.rng.IntN(-minInt2+1)),
		Float1: g.rng.Float64(),
		Float2: g.rng.Float64(),
		String: DefaultString,
		Binary: bin,
	}
}
