package tensor

// Backend defines the interface compute backends must implement. The set of
// operations is exactly what the style-transfer pipeline needs: element-wise
// arithmetic and reductions for the losses, matrix multiplication for Gram
// statistics, and the convolutional forward/backward kernels of the frozen
// feature network.
//
// Backends must be pure with respect to their inputs: results are always
// freshly allocated, never written into an argument buffer. The autodiff
// decorator relies on this to keep recorded inputs valid for the backward
// pass.
type Backend interface {
	// Element-wise binary operations. Operands must share a shape.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Scale multiplies every element by a scalar.
	Scale(x *RawTensor, s float32) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Mean reduces all elements to a single-element tensor of shape [1].
	Mean(x *RawTensor) *RawTensor

	// ReLU applies max(0, x) element-wise.
	ReLU(x *RawTensor) *RawTensor

	// Conv2D performs 2D convolution with a per-output-channel bias.
	// Input [N, C_in, H, W], kernel [C_out, C_in, K_h, K_w], bias [C_out]
	// (nil for no bias), producing [N, C_out, H_out, W_out].
	Conv2D(input, kernel, bias *RawTensor, stride, padding int) *RawTensor

	// Conv2DInputBackward computes the convolution gradient with respect to
	// the input (transposed convolution of grad with the kernel).
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// MaxPool2D performs 2D max pooling over square windows.
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// MaxPool2DBackward routes the pooled gradient back to the input
	// positions recorded in maxIndices during the forward pass.
	MaxPool2DBackward(input, grad *RawTensor, maxIndices []int, kernelSize, stride int) *RawTensor

	// Name returns the backend name.
	Name() string
}
