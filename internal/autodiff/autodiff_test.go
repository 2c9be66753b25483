package autodiff_test

import (
	"math"
	"testing"

	"github.com/painterly-ml/painterly/internal/autodiff"
	"github.com/painterly-ml/painterly/internal/backend/cpu"
	"github.com/painterly-ml/painterly/internal/tensor"
)

func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	if got := backend.Name(); got != "Autodiff(CPU)" {
		t.Errorf("Name() = %s, want Autodiff(CPU)", got)
	}
}

func TestTape_Recording(t *testing.T) {
	tape := autodiff.New(cpu.New()).GetTape()

	if tape.IsRecording() {
		t.Error("tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("tape should not be recording after StopRecording()")
	}
}

func TestTape_RecordsOnlyWhileRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.GetTape()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, backend)

	backend.Add(a.Raw(), b.Raw())
	if tape.NumOps() != 0 {
		t.Errorf("tape recorded %d ops while not recording", tape.NumOps())
	}

	tape.StartRecording()
	backend.Add(a.Raw(), b.Raw())
	if tape.NumOps() != 1 {
		t.Errorf("tape has %d ops, want 1", tape.NumOps())
	}
}

func TestTape_ClearPreservesRecordingState(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.GetTape()
	tape.StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	backend.Add(a.Raw(), a.Raw())

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("tape has %d ops after Clear(), want 0", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Clear() must preserve the recording state")
	}
}

func TestBackward_Add(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, backend)
	sum := a.Add(b)
	loss := sum.Mean()

	grads := autodiff.Backward(loss)

	// d(mean(a+b))/da = 1/n for every element.
	gradA := grads[a.Raw()]
	if gradA == nil {
		t.Fatal("no gradient for a")
	}
	for i, v := range gradA.Data() {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Errorf("gradA[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestBackward_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	// loss = mean(x²); dloss/dx = 2x/n.
	x, _ := tensor.FromSlice([]float32{1, -2, 3}, tensor.Shape{3}, backend)
	loss := x.Mul(x).Mean()

	grads := autodiff.Backward(loss)
	gradX := grads[x.Raw()]
	if gradX == nil {
		t.Fatal("no gradient for x")
	}

	want := []float32{2.0 / 3, -4.0 / 3, 2}
	for i, v := range gradX.Data() {
		if math.Abs(float64(v-want[i])) > 1e-5 {
			t.Errorf("gradX[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestBackward_GradientAccumulation(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	// x feeds two branches: loss = mean(x + x) => dloss/dx = 2/n.
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	loss := x.Add(x).Mean()

	grads := autodiff.Backward(loss)
	gradX := grads[x.Raw()]
	for i, v := range gradX.Data() {
		if math.Abs(float64(v-1)) > 1e-6 {
			t.Errorf("gradX[%d] = %v, want 1", i, v)
		}
	}
}

func TestBackward_MatMul(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	// loss = mean(A @ B), A [2x2], B [2x2].
	// dloss/dA = (1/4) * ones @ Bᵀ; dloss/dB = (1/4) * Aᵀ @ ones.
	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b, _ := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, backend)
	loss := a.MatMul(b).Mean()

	grads := autodiff.Backward(loss)

	wantA := []float32{11.0 / 4, 15.0 / 4, 11.0 / 4, 15.0 / 4}
	for i, v := range grads[a.Raw()].Data() {
		if math.Abs(float64(v-wantA[i])) > 1e-5 {
			t.Errorf("gradA[%d] = %v, want %v", i, v, wantA[i])
		}
	}

	wantB := []float32{4.0 / 4, 4.0 / 4, 6.0 / 4, 6.0 / 4}
	for i, v := range grads[b.Raw()].Data() {
		if math.Abs(float64(v-wantB[i])) > 1e-5 {
			t.Errorf("gradB[%d] = %v, want %v", i, v, wantB[i])
		}
	}
}

func TestBackward_ReLU(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	x, _ := tensor.FromSlice([]float32{-1, 2, -3, 4}, tensor.Shape{4}, backend)
	loss := x.ReLU().Mean()

	grads := autodiff.Backward(loss)
	want := []float32{0, 0.25, 0, 0.25}
	for i, v := range grads[x.Raw()].Data() {
		if math.Abs(float64(v-want[i])) > 1e-6 {
			t.Errorf("gradX[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestBackward_ReshapeTranspose(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	loss := x.Reshape(3, 2).T().Mean()

	grads := autodiff.Backward(loss)
	gradX := grads[x.Raw()]
	if !gradX.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("gradX shape = %v, want [2 3]", gradX.Shape())
	}
	for i, v := range gradX.Data() {
		if math.Abs(float64(v-1.0/6)) > 1e-6 {
			t.Errorf("gradX[%d] = %v, want %v", i, v, 1.0/6)
		}
	}
}

func TestBackward_NoGradientForFrozenKernel(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.GetTape().StartRecording()

	input, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	kernel, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1, 1, 1, 1}, backend)

	out := backend.Conv2D(input.Raw(), kernel.Raw(), nil, 1, 0)
	loss := tensor.New(out, backend).Mean()

	grads := autodiff.Backward(loss)
	if grads[kernel.Raw()] != nil {
		t.Error("frozen kernel received a gradient")
	}
	gradIn := grads[input.Raw()]
	if gradIn == nil {
		t.Fatal("no gradient for convolution input")
	}
	// d(mean(2x))/dx = 2/4 per element.
	for i, v := range gradIn.Data() {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Errorf("gradIn[%d] = %v, want 0.5", i, v)
		}
	}
}
