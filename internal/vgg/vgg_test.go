package vgg_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painterly-ml/painterly/internal/backend/cpu"
	"github.com/painterly-ml/painterly/internal/tensor"
	"github.com/painterly-ml/painterly/internal/vgg"
)

func testInput(backend *cpu.CPUBackend, seed int64) *tensor.Tensor[*cpu.CPUBackend] {
	rng := rand.New(rand.NewSource(seed))
	return tensor.Uniform(tensor.Shape{1, 3, 32, 32}, -1, 1, rng, backend)
}

func TestLayerNames(t *testing.T) {
	e := vgg.New(cpu.New())

	names := e.LayerNames()
	// VGG-19: 2+2+4+4+4 = 16 convolutions.
	require.Len(t, names, 16)
	assert.Equal(t, "block1_conv1", names[0])
	assert.Equal(t, "block1_conv2", names[1])
	assert.Equal(t, "block3_conv4", names[7])
	assert.Equal(t, "block5_conv4", names[15])

	for _, name := range names {
		assert.True(t, e.HasLayer(name), "HasLayer(%s)", name)
	}
	assert.False(t, e.HasLayer("block1_pool"))
}

func TestExtract_UnknownLayer(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(1, backend)

	_, err := e.Extract(testInput(backend, 1), "block9_conv9")
	assert.ErrorIs(t, err, vgg.ErrUnknownLayer)
}

func TestExtract_RejectsBadInput(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(1, backend)

	badChannels := tensor.Zeros(tensor.Shape{1, 4, 32, 32}, backend)
	_, err := e.Extract(badChannels, "block1_conv1")
	assert.ErrorIs(t, err, vgg.ErrShapeMismatch)

	tooSmall := tensor.Zeros(tensor.Shape{1, 3, 8, 8}, backend)
	_, err = e.Extract(tooSmall, "block1_conv1")
	assert.ErrorIs(t, err, vgg.ErrShapeMismatch)

	batched := tensor.Zeros(tensor.Shape{2, 3, 32, 32}, backend)
	_, err = e.Extract(batched, "block1_conv1")
	assert.ErrorIs(t, err, vgg.ErrShapeMismatch)
}

func TestExtract_ActivationShapes(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(2, backend)
	input := testInput(backend, 2)

	// Spatial size halves after each block; channel count follows the trunk.
	act1, err := e.Extract(input, "block1_conv1")
	require.NoError(t, err)
	assert.True(t, act1.Shape().Equal(tensor.Shape{1, 8, 32, 32}), "got %v", act1.Shape())

	act5, err := e.Extract(input, "block5_conv1")
	require.NoError(t, err)
	assert.True(t, act5.Shape().Equal(tensor.Shape{1, 16, 2, 2}), "got %v", act5.Shape())
}

func TestExtract_NonNegativeActivations(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(3, backend)

	act, err := e.Extract(testInput(backend, 3), "block2_conv1")
	require.NoError(t, err)
	for i, v := range act.Data() {
		require.GreaterOrEqual(t, v, float32(0), "post-ReLU activation %d is negative", i)
	}
}

func TestExtractAll_MatchesExtract(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(4, backend)
	input := testInput(backend, 4)

	layers := []string{"block1_conv1", "block3_conv1", "block5_conv2"}
	all, err := e.ExtractAll(input, layers)
	require.NoError(t, err)
	require.Len(t, all, len(layers))

	for _, name := range layers {
		single, err := e.Extract(input, name)
		require.NoError(t, err)
		assert.Equal(t, single.Data(), all[name].Data(), "layer %s", name)
	}
}

func TestExtractAll_DuplicateLayers(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(5, backend)

	all, err := e.ExtractAll(testInput(backend, 5), []string{"block1_conv1", "block1_conv1"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExtract_Deterministic(t *testing.T) {
	backend := cpu.New()
	e := vgg.NewRandom(6, backend)
	input := testInput(backend, 6)

	a, err := e.Extract(input, "block2_conv2")
	require.NoError(t, err)
	b, err := e.Extract(input, "block2_conv2")
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}

func TestWeights_ExportLoadRoundTrip(t *testing.T) {
	backend := cpu.New()
	source := vgg.NewRandom(7, backend)
	target := vgg.NewRandom(8, backend)
	input := testInput(backend, 7)

	want, err := source.Extract(input, "block4_conv1")
	require.NoError(t, err)

	before, err := target.Extract(input, "block4_conv1")
	require.NoError(t, err)
	assert.NotEqual(t, want.Data(), before.Data())

	require.NoError(t, target.LoadWeights(source.ExportWeights()))

	after, err := target.Extract(input, "block4_conv1")
	require.NoError(t, err)
	assert.Equal(t, want.Data(), after.Data())
}

func TestLoadWeights_MissingLayer(t *testing.T) {
	backend := cpu.New()
	source := vgg.NewRandom(9, backend)

	store := source.ExportWeights()
	target := vgg.New(backend)
	// A full-width trunk cannot take narrow test weights.
	assert.Error(t, target.LoadWeights(store))
}
