// Package transfer runs the style transfer optimization: starting from the
// content image (optionally blended with noise), it repeatedly pushes the
// image's pixels down the gradient of a combined content and style loss.
package transfer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/painterly-ml/painterly/internal/autodiff"
	"github.com/painterly-ml/painterly/internal/optim"
	"github.com/painterly-ml/painterly/internal/style"
	"github.com/painterly-ml/painterly/internal/tensor"
	"github.com/painterly-ml/painterly/internal/vgg"
)

// ErrNumericalDivergence is returned when the optimization produces
// non-finite values in the loss or the generated image. A lower learning
// rate usually fixes it.
var ErrNumericalDivergence = errors.New("transfer: numerical divergence")

// State describes where the engine is in its lifecycle.
type State int

const (
	// StateInitialized means the engine is ready but has not stepped yet.
	StateInitialized State = iota
	// StateRunning means at least one step has been taken.
	StateRunning
	// StateCompleted means all configured iterations finished.
	StateCompleted
	// StateFailed means the run aborted; Err explains why.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FeatureExtractor provides named-layer activations of a frozen network.
// Any backbone works as long as it exposes its layers by name;
// vgg.Extractor is the stock implementation.
type FeatureExtractor[B autodiff.BackwardCapable] interface {
	Extract(img *tensor.Tensor[B], layer string) (*tensor.Tensor[B], error)
	ExtractAll(img *tensor.Tensor[B], layers []string) (map[string]*tensor.Tensor[B], error)
	HasLayer(name string) bool
	Backend() B
}

// LossRecord captures the loss terms of one iteration.
type LossRecord struct {
	Iteration int
	Total     float32
	Content   float32
	Style     float32
}

// Progress is delivered once per iteration. Snapshot is non-nil on
// checkpoint iterations and holds a copy of the generated image tensor.
type Progress struct {
	Record   LossRecord
	Snapshot *tensor.RawTensor
}

// Engine drives the optimization loop. It is used like a scanner:
//
//	for engine.Next() {
//	    p := engine.Progress()
//	    ...
//	}
//	if err := engine.Err(); err != nil { ... }
//
// Engine is not safe for concurrent use.
type Engine[B autodiff.BackwardCapable] struct {
	cfg        Config
	extractor  FeatureExtractor[B]
	backend    B
	generated  *tensor.Tensor[B]
	contentRef *tensor.Tensor[B]
	styleGrams map[string]*tensor.Tensor[B]
	passLayers []string
	optimizer  optim.Optimizer

	state    State
	iter     int
	progress Progress
	history  []LossRecord
	err      error
}

// NewEngine prepares an optimization run.
//
// content and styleImg are preprocessed [1, 3, H, W] tensors on the same
// backend as the extractor; they must agree in shape. The reference
// activations of both images are computed here, concurrently, with the
// gradient tape off.
func NewEngine[B autodiff.BackwardCapable](extractor FeatureExtractor[B], content, styleImg *tensor.Tensor[B], cfg Config) (*Engine[B], error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	if !content.Shape().Equal(styleImg.Shape()) {
		return nil, fmt.Errorf("transfer: content shape %v does not match style shape %v", content.Shape(), styleImg.Shape())
	}
	if !extractor.HasLayer(cfg.ContentLayer) {
		return nil, fmt.Errorf("transfer: %w: %s", vgg.ErrUnknownLayer, cfg.ContentLayer)
	}
	for _, lw := range cfg.StyleLayers {
		if !extractor.HasLayer(lw.Layer) {
			return nil, fmt.Errorf("transfer: %w: %s", vgg.ErrUnknownLayer, lw.Layer)
		}
	}

	backend := extractor.Backend()
	backend.GetTape().StopRecording()

	styleNames := make([]string, len(cfg.StyleLayers))
	for i, lw := range cfg.StyleLayers {
		styleNames[i] = lw.Layer
	}

	// Both reference passes read only immutable inputs and record nothing,
	// so they can run in parallel.
	var (
		contentRef *tensor.Tensor[B]
		styleActs  map[string]*tensor.Tensor[B]
		g          errgroup.Group
	)
	g.Go(func() error {
		var err error
		contentRef, err = extractor.Extract(content, cfg.ContentLayer)
		return err
	})
	g.Go(func() error {
		var err error
		styleActs, err = extractor.ExtractAll(styleImg, styleNames)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transfer: computing reference activations: %w", err)
	}

	styleGrams := make(map[string]*tensor.Tensor[B], len(styleActs))
	for name, act := range styleActs {
		gram, err := style.Gram(act)
		if err != nil {
			return nil, fmt.Errorf("transfer: layer %s: %w", name, err)
		}
		styleGrams[name] = gram
	}

	e := &Engine[B]{
		cfg:        cfg,
		extractor:  extractor,
		backend:    backend,
		generated:  initialImage(content, cfg),
		contentRef: contentRef,
		styleGrams: styleGrams,
		passLayers: append(styleNames, cfg.ContentLayer),
		state:      StateInitialized,
	}
	e.optimizer = optim.NewAdam([]*tensor.RawTensor{e.generated.Raw()}, optim.AdamConfig{
		LR: cfg.LearningRate,
	})
	return e, nil
}

// initialImage blends the content image with uniform noise:
//
//	generated = noise*U(-20, 20) + (1-noise)*content
//
// With NoiseRatio zero the run starts from an exact copy of the content.
func initialImage[B autodiff.BackwardCapable](content *tensor.Tensor[B], cfg Config) *tensor.Tensor[B] {
	img := content.Clone()
	if cfg.NoiseRatio == 0 {
		return img
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	data := img.Data()
	for i := range data {
		noise := -20 + rng.Float32()*40
		data[i] = cfg.NoiseRatio*noise + (1-cfg.NoiseRatio)*data[i]
	}
	return img
}

// Next advances the optimization by one iteration. It returns false once all
// iterations are done or the run failed; check Err afterwards.
func (e *Engine[B]) Next() bool {
	if e.state == StateCompleted || e.state == StateFailed {
		return false
	}
	if e.iter >= e.cfg.Iterations {
		e.state = StateCompleted
		return false
	}

	e.state = StateRunning
	e.iter++

	record, err := e.step()
	if err != nil {
		e.err = err
		e.state = StateFailed
		return false
	}

	e.history = append(e.history, record)
	e.progress = Progress{Record: record}
	if e.isCheckpoint() {
		e.progress.Snapshot = e.generated.Raw().Clone()
	}
	if e.iter == e.cfg.Iterations {
		e.state = StateCompleted
	}
	return true
}

// step runs one forward pass, backward pass and parameter update.
func (e *Engine[B]) step() (LossRecord, error) {
	tape := e.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer tape.StopRecording()

	acts, err := e.extractor.ExtractAll(e.generated, e.passLayers)
	if err != nil {
		return LossRecord{}, err
	}

	contentLoss, err := style.ContentLoss(e.contentRef, acts[e.cfg.ContentLayer])
	if err != nil {
		return LossRecord{}, err
	}
	styleLoss, err := style.StyleLossFromGrams(e.styleGrams, acts, e.cfg.StyleLayers)
	if err != nil {
		return LossRecord{}, err
	}
	totalLoss := style.TotalLoss(contentLoss, styleLoss, e.cfg.Alpha, e.cfg.Beta)

	tape.StopRecording()
	grads := autodiff.Backward(totalLoss)
	e.optimizer.Step(grads)

	record := LossRecord{
		Iteration: e.iter,
		Total:     totalLoss.Item(),
		Content:   contentLoss.Item(),
		Style:     styleLoss.Item(),
	}
	if !finite(record.Total) || !allFinite(e.generated.Data()) {
		return LossRecord{}, fmt.Errorf("%w at iteration %d", ErrNumericalDivergence, e.iter)
	}
	return record, nil
}

func (e *Engine[B]) isCheckpoint() bool {
	if e.iter == e.cfg.Iterations {
		return true
	}
	return e.cfg.CheckpointInterval > 0 && e.iter%e.cfg.CheckpointInterval == 0
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func allFinite(data []float32) bool {
	for _, v := range data {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Progress returns the record produced by the latest successful Next call.
func (e *Engine[B]) Progress() Progress { return e.progress }

// Err returns the error that stopped the run, if any.
func (e *Engine[B]) Err() error { return e.err }

// State returns the engine's lifecycle state.
func (e *Engine[B]) State() State { return e.state }

// Iteration returns the number of completed iterations.
func (e *Engine[B]) Iteration() int { return e.iter }

// History returns the loss records of all completed iterations.
func (e *Engine[B]) History() []LossRecord { return e.history }

// Image returns a copy of the current generated image tensor.
func (e *Engine[B]) Image() *tensor.RawTensor { return e.generated.Raw().Clone() }

// Run drives the engine to completion, delivering every progress record to
// sink. A nil sink just runs the loop.
func (e *Engine[B]) Run(sink Sink) error {
	for e.Next() {
		if sink != nil {
			sink.OnProgress(e.progress)
		}
	}
	return e.Err()
}
