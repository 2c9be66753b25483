package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return New(MustNewRaw(shape), b)
}

// Full creates a tensor filled with a specific value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[B] {
	raw := MustNewRaw(shape)
	data := raw.Data()
	for i := range data {
		data[i] = value
	}
	return New(raw, b)
}

// Uniform creates a tensor filled with values drawn from U(lo, hi) using the
// supplied source. Callers own the source, which makes runs reproducible
// under a fixed seed.
func Uniform[B Backend](shape Shape, lo, hi float32, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustNewRaw(shape)
	data := raw.Data()
	for i := range data {
		data[i] = lo + rng.Float32()*(hi-lo)
	}
	return New(raw, b)
}
