package transfer_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painterly-ml/painterly/internal/autodiff"
	"github.com/painterly-ml/painterly/internal/backend/cpu"
	"github.com/painterly-ml/painterly/internal/style"
	"github.com/painterly-ml/painterly/internal/tensor"
	"github.com/painterly-ml/painterly/internal/transfer"
	"github.com/painterly-ml/painterly/internal/vgg"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func testSetup(t *testing.T) (*vgg.Extractor[testBackend], *tensor.Tensor[testBackend], *tensor.Tensor[testBackend]) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	extractor := vgg.NewRandom(1, backend)
	content := tensor.Uniform(tensor.Shape{1, 3, 32, 32}, -100, 100, rand.New(rand.NewSource(2)), backend)
	styleImg := tensor.Uniform(tensor.Shape{1, 3, 32, 32}, -100, 100, rand.New(rand.NewSource(3)), backend)
	return extractor, content, styleImg
}

func testConfig(iterations int) transfer.Config {
	return transfer.Config{
		Alpha:              1e-5,
		Beta:               1e-2,
		LearningRate:       1,
		Iterations:         iterations,
		CheckpointInterval: 0,
		ContentLayer:       "block5_conv2",
		StyleLayers: []style.LayerWeight{
			{Layer: "block1_conv1", Weight: 0.5},
			{Layer: "block3_conv1", Weight: 0.8},
		},
	}
}

func TestNewEngine_Validation(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	t.Run("shape mismatch", func(t *testing.T) {
		other := tensor.Zeros(tensor.Shape{1, 3, 64, 64}, extractor.Backend())
		_, err := transfer.NewEngine(extractor, content, other, testConfig(1))
		assert.Error(t, err)
	})

	t.Run("unknown content layer", func(t *testing.T) {
		cfg := testConfig(1)
		cfg.ContentLayer = "block9_conv1"
		_, err := transfer.NewEngine(extractor, content, styleImg, cfg)
		assert.ErrorIs(t, err, vgg.ErrUnknownLayer)
	})

	t.Run("unknown style layer", func(t *testing.T) {
		cfg := testConfig(1)
		cfg.StyleLayers = []style.LayerWeight{{Layer: "nope", Weight: 1}}
		_, err := transfer.NewEngine(extractor, content, styleImg, cfg)
		assert.ErrorIs(t, err, vgg.ErrUnknownLayer)
	})

	t.Run("negative iterations", func(t *testing.T) {
		cfg := testConfig(1)
		cfg.Iterations = -1
		_, err := transfer.NewEngine(extractor, content, styleImg, cfg)
		assert.Error(t, err)
	})

	t.Run("noise ratio out of range", func(t *testing.T) {
		cfg := testConfig(1)
		cfg.NoiseRatio = 1.5
		_, err := transfer.NewEngine(extractor, content, styleImg, cfg)
		assert.Error(t, err)
	})
}

func TestEngine_ZeroIterationsReturnsContentCopy(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	engine, err := transfer.NewEngine(extractor, content, styleImg, testConfig(0))
	require.NoError(t, err)
	assert.Equal(t, transfer.StateInitialized, engine.State())

	require.NoError(t, engine.Run(nil))
	assert.Equal(t, transfer.StateCompleted, engine.State())
	assert.Empty(t, engine.History())
	assert.Equal(t, content.Data(), engine.Image().Data())
}

func TestEngine_ProducesOneRecordPerIteration(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	const n = 4
	engine, err := transfer.NewEngine(extractor, content, styleImg, testConfig(n))
	require.NoError(t, err)

	var iterations []int
	for engine.Next() {
		p := engine.Progress()
		iterations = append(iterations, p.Record.Iteration)
		assert.False(t, p.Record.Total < 0, "total loss must be non-negative")
		assert.False(t, p.Record.Style < 0, "style loss must be non-negative")
	}

	require.NoError(t, engine.Err())
	assert.Equal(t, []int{1, 2, 3, 4}, iterations)
	assert.Equal(t, transfer.StateCompleted, engine.State())
	assert.Len(t, engine.History(), n)

	// The iterator is exhausted.
	assert.False(t, engine.Next())
}

func TestEngine_Checkpoints(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	cfg := testConfig(5)
	cfg.CheckpointInterval = 2
	engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
	require.NoError(t, err)

	var snapshots []int
	for engine.Next() {
		if p := engine.Progress(); p.Snapshot != nil {
			snapshots = append(snapshots, p.Record.Iteration)
			assert.True(t, p.Snapshot.Shape().Equal(tensor.Shape{1, 3, 32, 32}))
		}
	}
	require.NoError(t, engine.Err())

	// Every interval plus the final iteration.
	assert.Equal(t, []int{2, 4, 5}, snapshots)
}

func TestEngine_OptimizationMovesTheImage(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	engine, err := transfer.NewEngine(extractor, content, styleImg, testConfig(3))
	require.NoError(t, err)
	require.NoError(t, engine.Run(nil))

	assert.NotEqual(t, content.Data(), engine.Image().Data())
}

func TestEngine_ContentAsStyleIsAFixedPoint(t *testing.T) {
	extractor, content, _ := testSetup(t)

	// With the style image equal to the content image and no noise, the
	// initial image already has zero content and style loss, so the
	// gradient vanishes and the optimizer never moves it.
	engine, err := transfer.NewEngine(extractor, content, content.Clone(), testConfig(3))
	require.NoError(t, err)
	require.NoError(t, engine.Run(nil))

	for _, rec := range engine.History() {
		assert.Zero(t, rec.Total, "iteration %d", rec.Iteration)
		assert.Zero(t, rec.Content, "iteration %d", rec.Iteration)
		assert.Zero(t, rec.Style, "iteration %d", rec.Iteration)
	}
	assert.Equal(t, content.Data(), engine.Image().Data())
}

func TestEngine_ZeroAlphaIgnoresContentLoss(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	cfg := testConfig(2)
	cfg.Alpha = 0
	engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Run(nil))

	for _, rec := range engine.History() {
		assert.InEpsilon(t, cfg.Beta*rec.Style, rec.Total, 1e-6, "iteration %d", rec.Iteration)
	}
}

func TestEngine_DeterministicUnderSeed(t *testing.T) {
	run := func() []float32 {
		extractor, content, styleImg := testSetup(t)
		cfg := testConfig(3)
		cfg.NoiseRatio = 0.6
		cfg.Seed = 42
		engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
		require.NoError(t, err)
		require.NoError(t, engine.Run(nil))
		return engine.Image().Data()
	}

	assert.Equal(t, run(), run())
}

func TestEngine_DivergenceDetection(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	cfg := testConfig(10)
	cfg.LearningRate = 1e20
	engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
	require.NoError(t, err)

	err = engine.Run(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transfer.ErrNumericalDivergence)
	assert.Equal(t, transfer.StateFailed, engine.State())
}

func TestEngine_SinkReceivesEveryRecord(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	engine, err := transfer.NewEngine(extractor, content, styleImg, testConfig(3))
	require.NoError(t, err)

	var seen []int
	sink := transfer.SinkFunc(func(p transfer.Progress) {
		seen = append(seen, p.Record.Iteration)
	})
	require.NoError(t, engine.Run(sink))
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestEngine_PanickySinkObservesSnapshotCopy(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	cfg := testConfig(2)
	cfg.CheckpointInterval = 1
	engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
	require.NoError(t, err)

	// Sinks observe a deep copy: scribbling over the snapshot must not
	// disturb the optimization.
	sink := transfer.SinkFunc(func(p transfer.Progress) {
		require.NotNil(t, p.Snapshot)
		for i := range p.Snapshot.Data() {
			p.Snapshot.Data()[i] = float32(math.NaN())
		}
	})
	require.NoError(t, engine.Run(sink))
	assert.Equal(t, transfer.StateCompleted, engine.State())
}

func TestEngine_NoiseBlendRespectsRatio(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	cfg := testConfig(0)
	cfg.NoiseRatio = 0.5
	cfg.Seed = 7
	engine, err := transfer.NewEngine(extractor, content, styleImg, cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Run(nil))

	// generated = 0.5*noise + 0.5*content with noise in [-20, 20]; every
	// pixel must sit within 10 of the halved content value.
	img := engine.Image().Data()
	for i, c := range content.Data() {
		assert.InDelta(t, 0.5*c, img[i], 10.001, "pixel %d", i)
	}
}

func TestConfig_DefaultsApplied(t *testing.T) {
	extractor, content, styleImg := testSetup(t)

	// An empty config picks up the layer and learning-rate defaults;
	// iterations stay zero, so the run completes immediately.
	engine, err := transfer.NewEngine(extractor, content, styleImg, transfer.Config{})
	require.NoError(t, err)
	require.NoError(t, engine.Run(nil))
	assert.Equal(t, transfer.StateCompleted, engine.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "initialized", transfer.StateInitialized.String())
	assert.Equal(t, "running", transfer.StateRunning.String())
	assert.Equal(t, "completed", transfer.StateCompleted.String())
	assert.Equal(t, "failed", transfer.StateFailed.String())
}
