package vgg

import (
	"math"
	"math/rand"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// NewRandom builds a narrow trunk with the same block structure and layer
// names as VGG-19 but far fewer channels, with He-initialized weights drawn
// from a seeded source. Intended for tests, where a 20M-parameter network
// would be pointless weight.
func NewRandom[B tensor.Backend](seed int64, backend B) *Extractor[B] {
	rng := rand.New(rand.NewSource(seed))
	widths := []int{8, 8, 16, 16, 16}

	e := build(convsPerBlock, widths, backend)
	for _, s := range e.steps {
		if s.conv == nil {
			continue
		}
		data := s.conv.Weight().Data()
		fanIn := s.conv.Weight().Shape()[1] * 9
		std := float32(math.Sqrt(2.0 / float64(fanIn)))
		for i := range data {
			data[i] = float32(rng.NormFloat64()) * std
		}
		bias := s.conv.Bias().Data()
		for i := range bias {
			bias[i] = float32(rng.NormFloat64()) * 0.01
		}
	}
	return e
}
