package cpu

import (
	"fmt"

	"github.com/painterly-ml/painterly/internal/parallel"
	"github.com/painterly-ml/painterly/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [N, C_in, H, W]
// Kernel shape: [C_out, C_in, K_h, K_w]
// Bias shape: [C_out] (nil for no bias)
// Output shape: [N, C_out, H_out, W_out]
//
// Where:
//
//	out_h = (H + 2*padding - K_h) / stride + 1
//	out_w = (W + 2*padding - K_w) / stride + 1
//
// Im2col converts convolution to matrix multiplication: input patches are
// unrolled into columns, the kernel is viewed as a [C_out, C_in*K_h*K_w]
// matrix, and a single matmul produces all output positions.
//
// Reference: "High Performance Convolutional Neural Networks for Document
// Processing" (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel, bias *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}

	N := inputShape[0]
	CIn := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	COut := kernelShape[0]
	KH := kernelShape[2]
	KW := kernelShape[3]

	if CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, kernelShape[1]))
	}
	if bias != nil && bias.NumElements() != COut {
		panic(fmt.Sprintf("conv2d: bias length %d != output channels %d", bias.NumElements(), COut))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output := tensor.MustNewRaw(tensor.Shape{N, COut, HOut, WOut})

	inputData := input.Data()
	kernelData := kernel.Data()
	outputData := output.Data()

	// Im2col: [N * H_out * W_out, C_in * K_h * K_w]
	colWidth := CIn * KH * KW
	colHeight := N * HOut * WOut
	colBuf := make([]float32, colHeight*colWidth)
	im2col(colBuf, inputData, N, CIn, H, W, KH, KW, HOut, WOut, stride, padding)

	// kernel is already [C_out, C_in*K_h*K_w] in row-major layout.
	// result[c, p] = sum_k kernel[c, k] * colBuf[p, k]
	// Output channels write disjoint planes, so they parallelize cleanly.
	spatial := HOut * WOut
	parallel.For(COut, func(c int) {
		kernelRow := kernelData[c*colWidth : (c+1)*colWidth]
		var b float32
		if bias != nil {
			b = bias.Data()[c]
		}
		for p := 0; p < colHeight; p++ {
			col := colBuf[p*colWidth : (p+1)*colWidth]
			sum := b
			for k, kv := range kernelRow {
				sum += kv * col[k]
			}
			// p enumerates (n, h, w); scatter into [n, c, h, w].
			n := p / spatial
			outputData[(n*COut+c)*spatial+p%spatial] = sum
		}
	}, cpu.par)

	return output
}

// im2col unrolls input patches into rows of colBuf.
//
// Each row of colBuf corresponds to one output position, each column to one
// kernel weight. Out-of-bounds positions (padding) contribute zero.
func im2col(colBuf, inputData []float32, n, c, h, w, kh, kw, hOut, wOut, stride, padding int) {
	colWidth := c * kh * kw
	colIdx := 0

	for batch := 0; batch < n; batch++ {
		for outH := 0; outH < hOut; outH++ {
			for outW := 0; outW < wOut; outW++ {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				bufIdx := colIdx * colWidth

				for chn := 0; chn < c; chn++ {
					for dy := 0; dy < kh; dy++ {
						for dx := 0; dx < kw; dx++ {
							y := hStart + dy
							x := wStart + dx

							if y >= 0 && y < h && x >= 0 && x < w {
								colBuf[bufIdx] = inputData[((batch*c+chn)*h+y)*w+x]
							} else {
								colBuf[bufIdx] = 0
							}
							bufIdx++
						}
					}
				}

				colIdx++
			}
		}
	}
}
