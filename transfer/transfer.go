// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package transfer provides the public API for the style transfer engine.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	extractor, _ := vgg.Load("vgg19.pwts", backend)
//	engine, _ := transfer.NewEngine(extractor, content, styleImg, transfer.DefaultConfig())
//	err := engine.Run(&transfer.LogSink{Interval: 50})
package transfer

import (
	"github.com/painterly-ml/painterly/autodiff"
	internal "github.com/painterly-ml/painterly/internal/transfer"
	"github.com/painterly-ml/painterly/tensor"
)

// ErrNumericalDivergence is returned when the optimization produces
// non-finite values.
var ErrNumericalDivergence = internal.ErrNumericalDivergence

// Config holds the optimization hyperparameters.
type Config = internal.Config

// State describes the engine lifecycle.
type State = internal.State

// Lifecycle states.
const (
	StateInitialized = internal.StateInitialized
	StateRunning     = internal.StateRunning
	StateCompleted   = internal.StateCompleted
	StateFailed      = internal.StateFailed
)

// LossRecord captures the loss terms of one iteration.
type LossRecord = internal.LossRecord

// Progress is delivered once per iteration.
type Progress = internal.Progress

// Sink receives one Progress per iteration.
type Sink = internal.Sink

// SinkFunc adapts a function to the Sink interface.
type SinkFunc = internal.SinkFunc

// LogSink logs loss values with a standard library logger.
type LogSink = internal.LogSink

// FeatureExtractor provides named-layer activations of a frozen network.
type FeatureExtractor[B autodiff.BackwardCapable] = internal.FeatureExtractor[B]

// Engine drives the optimization loop.
type Engine[B autodiff.BackwardCapable] = internal.Engine[B]

// DefaultConfig returns the standard hyperparameters.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// NewEngine prepares an optimization run over preprocessed content and
// style tensors.
func NewEngine[B autodiff.BackwardCapable](extractor FeatureExtractor[B], content, styleImg *tensor.Tensor[B], cfg Config) (*Engine[B], error) {
	return internal.NewEngine(extractor, content, styleImg, cfg)
}
