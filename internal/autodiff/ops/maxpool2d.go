package ops

import (
	"math"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// MaxPool2DOp records a max pooling operation for autodiff.
//
// The flat input index of each window maximum is captured at construction
// time; the backward pass routes each output gradient to exactly that
// position, all other positions in the window receive zero.
type MaxPool2DOp struct {
	input      *tensor.RawTensor
	output     *tensor.RawTensor
	maxIndices []int
	kernelSize int
	stride     int
}

// NewMaxPool2DOp creates a new MaxPool2D operation, recording the max
// positions of the forward pass for gradient routing.
func NewMaxPool2DOp(input, output *tensor.RawTensor, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{
		input:      input,
		output:     output,
		maxIndices: computeMaxIndices(input, output, kernelSize, stride),
		kernelSize: kernelSize,
		stride:     stride,
	}
}

// computeMaxIndices finds which input position held the maximum for each
// output position.
func computeMaxIndices(input, output *tensor.RawTensor, kernelSize, stride int) []int {
	inputShape := input.Shape()
	outputShape := output.Shape()

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := outputShape[2]
	WOut := outputShape[3]

	maxIndices := make([]int, N*C*HOut*WOut)
	inputData := input.Data()

	outIdx := 0
	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			planeOffset := (n*C + c) * H * W

			for outH := 0; outH < HOut; outH++ {
				hStart := outH * stride
				for outW := 0; outW < WOut; outW++ {
					wStart := outW * stride

					maxVal := float32(math.Inf(-1))
					maxPos := planeOffset + hStart*W + wStart
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							idx := planeOffset + (hStart+kh)*W + (wStart + kw)
							if v := inputData[idx]; v > maxVal {
								maxVal = v
								maxPos = idx
							}
						}
					}

					maxIndices[outIdx] = maxPos
					outIdx++
				}
			}
		}
	}

	return maxIndices
}

// Backward routes the output gradient to the recorded max positions.
func (op *MaxPool2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputGrad := backend.MaxPool2DBackward(op.input, outputGrad, op.maxIndices, op.kernelSize, op.stride)
	return []*tensor.RawTensor{inputGrad}
}

// Inputs returns the input tensors [x].
func (op *MaxPool2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the pooled output tensor.
func (op *MaxPool2DOp) Output() *tensor.RawTensor { return op.output }
