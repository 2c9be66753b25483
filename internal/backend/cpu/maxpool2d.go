package cpu

import (
	"fmt"
	"math"

	"github.com/painterly-ml/painterly/internal/parallel"
	"github.com/painterly-ml/painterly/internal/tensor"
)

// MaxPool2D performs 2D max pooling over square windows.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, out_h, out_w]
//
// Where:
//
//	out_h = (H - kernelSize) / stride + 1
//	out_w = (W - kernelSize) / stride + 1
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d or stride %d", kernelSize, stride))
	}
	if kernelSize > H || kernelSize > W {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W))
	}

	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	output := tensor.MustNewRaw(tensor.Shape{N, C, HOut, WOut})
	inputData := input.Data()
	outputData := output.Data()

	parallel.ForBatch(N, C, func(n, c int) {
		plane := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		outIdx := (n*C + c) * HOut * WOut

		for outH := 0; outH < HOut; outH++ {
			hStart := outH * stride
			for outW := 0; outW < WOut; outW++ {
				wStart := outW * stride

				maxVal := float32(math.Inf(-1))
				for kh := 0; kh < kernelSize; kh++ {
					row := plane[(hStart+kh)*W : (hStart+kh+1)*W]
					for kw := 0; kw < kernelSize; kw++ {
						if v := row[wStart+kw]; v > maxVal {
							maxVal = v
						}
					}
				}

				outputData[outIdx] = maxVal
				outIdx++
			}
		}
	}, cpu.par)

	return output
}

// MaxPool2DBackward routes gradients to the input positions that held the
// window maximum during the forward pass. All other positions in a pooling
// window receive zero gradient.
//
// maxIndices holds, for each output position in row-major order, the flat
// input index of the forward maximum (as recorded by the autodiff op).
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("maxpool2d backward: maxIndices length %d != grad elements %d", len(maxIndices), grad.NumElements()))
	}

	inputGrad := tensor.MustNewRaw(input.Shape())
	inputGradData := inputGrad.Data()
	gradData := grad.Data()

	for outIdx, maxPos := range maxIndices {
		inputGradData[maxPos] += gradData[outIdx]
	}

	return inputGrad
}
