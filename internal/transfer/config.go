package transfer

import (
	"errors"
	"fmt"

	"github.com/painterly-ml/painterly/internal/style"
)

// Config holds the optimization hyperparameters.
//
// An empty content layer, empty style layer list or zero learning rate
// select the defaults. Alpha and Beta are taken as given, so a zero weight
// genuinely removes that loss term; use DefaultConfig for the standard
// weighting. Validate rejects configurations no run can work with.
type Config struct {
	// Alpha weights the content loss in the total loss.
	Alpha float32
	// Beta weights the style loss in the total loss.
	Beta float32
	// LearningRate is the Adam step size.
	LearningRate float32
	// Iterations is the number of optimization steps. Zero is allowed and
	// produces the initial image unchanged.
	Iterations int
	// CheckpointInterval controls how often an image snapshot is attached to
	// the progress record. Zero disables intermediate snapshots.
	CheckpointInterval int
	// ContentLayer names the trunk layer used for the content loss.
	ContentLayer string
	// StyleLayers names the trunk layers and weights used for the style loss.
	StyleLayers []style.LayerWeight
	// NoiseRatio blends uniform noise into the initial image:
	// generated = NoiseRatio*U(-20, 20) + (1-NoiseRatio)*content.
	NoiseRatio float32
	// Seed drives the noise generator, making runs reproducible.
	Seed int64
}

// DefaultConfig returns the standard hyperparameters.
func DefaultConfig() Config {
	return Config{
		Alpha:              1e-5,
		Beta:               1e-2,
		LearningRate:       8,
		Iterations:         2000,
		CheckpointInterval: 200,
		ContentLayer:       style.DefaultContentLayer,
		StyleLayers:        style.DefaultStyleLayers(),
	}
}

func (c *Config) setDefaults() {
	if c.LearningRate == 0 {
		c.LearningRate = 8
	}
	if c.ContentLayer == "" {
		c.ContentLayer = style.DefaultContentLayer
	}
	if len(c.StyleLayers) == 0 {
		c.StyleLayers = style.DefaultStyleLayers()
	}
}

// Validate checks the configuration for values no run can work with.
func (c *Config) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", c.Iterations)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("checkpoint interval must be non-negative, got %d", c.CheckpointInterval)
	}
	if c.LearningRate < 0 {
		return errors.New("learning rate must be non-negative")
	}
	if c.NoiseRatio < 0 || c.NoiseRatio > 1 {
		return fmt.Errorf("noise ratio must be in [0, 1], got %g", c.NoiseRatio)
	}
	return nil
}
