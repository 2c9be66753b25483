// Package style implements the content and style losses of Gatys-style
// neural style transfer.
//
// All losses are computed through tensor operations so that, on an
// autodiff-decorated backend, gradients flow back to the generated image.
package style

import (
	"errors"
	"fmt"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// ErrShapeMismatch is returned when two activations that must be compared do
// not have the same shape.
var ErrShapeMismatch = errors.New("style: shape mismatch")

// contentScale is the constant factor applied to the raw content distance.
const contentScale = 0.05

// Gram computes the Gram matrix of a [1, C, H, W] activation.
//
// The activation is unrolled to [C, H*W] and multiplied with its own
// transpose, giving a [C, C] matrix of channel correlations. Spatial
// arrangement is discarded, which is exactly what makes the Gram matrix a
// texture statistic.
func Gram[B tensor.Backend](activation *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	shape := activation.Shape()
	if len(shape) != 4 || shape[0] != 1 {
		return nil, fmt.Errorf("%w: activation must be [1, C, H, W], got %v", ErrShapeMismatch, shape)
	}
	c, h, w := shape[1], shape[2], shape[3]

	unrolled := activation.Reshape(c, h*w)
	return unrolled.MatMul(unrolled.T()), nil
}

// ContentLoss computes the content loss between the content activation and
// the generated activation at a single layer:
//
//	J_content = 0.05 * mean((a_C - a_G)²)
func ContentLoss[B tensor.Backend](content, generated *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if !content.Shape().Equal(generated.Shape()) {
		return nil, fmt.Errorf("%w: content %v vs generated %v", ErrShapeMismatch, content.Shape(), generated.Shape())
	}
	diff := content.Sub(generated)
	return diff.Mul(diff).Mean().Scale(contentScale), nil
}

// LayerWeight pairs a trunk layer name with its contribution to the style
// loss.
type LayerWeight struct {
	Layer  string
	Weight float32
}

// LayerStyleLoss computes the style loss for a single layer:
//
//	J_style_layer = mean((G_S - G_G)²) / (4 * C² * (H*W)²)
//
// gramStyle is the precomputed [C, C] Gram matrix of the style activation;
// the generated activation's Gram is computed here so its operations land on
// the gradient tape.
func LayerStyleLoss[B tensor.Backend](gramStyle, generatedAct *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	shape := generatedAct.Shape()
	if len(shape) != 4 || shape[0] != 1 {
		return nil, fmt.Errorf("%w: generated activation must be [1, C, H, W], got %v", ErrShapeMismatch, shape)
	}
	c := shape[1]
	if !gramStyle.Shape().Equal(tensor.Shape{c, c}) {
		return nil, fmt.Errorf("%w: style Gram %v vs %d channels", ErrShapeMismatch, gramStyle.Shape(), c)
	}

	gramGen, err := Gram(generatedAct)
	if err != nil {
		return nil, err
	}

	hw := float64(shape[2] * shape[3])
	norm := float32(1.0 / (4.0 * float64(c) * float64(c) * hw * hw))

	diff := gramStyle.Sub(gramGen)
	return diff.Mul(diff).Mean().Scale(norm), nil
}

// StyleLoss computes the weighted sum of per-layer style losses from raw
// activations. The style Grams are derived here; callers running an
// optimization loop should precompute them once and use StyleLossFromGrams.
func StyleLoss[B tensor.Backend](
	styleActs, generatedActs map[string]*tensor.Tensor[B],
	layers []LayerWeight,
) (*tensor.Tensor[B], error) {
	grams := make(map[string]*tensor.Tensor[B], len(layers))
	for _, lw := range layers {
		styleAct, ok := styleActs[lw.Layer]
		if !ok {
			return nil, fmt.Errorf("style: missing style activation for layer %s", lw.Layer)
		}
		genAct, ok := generatedActs[lw.Layer]
		if !ok {
			return nil, fmt.Errorf("style: missing generated activation for layer %s", lw.Layer)
		}
		if !styleAct.Shape().Equal(genAct.Shape()) {
			return nil, fmt.Errorf("%w: layer %s style %v vs generated %v", ErrShapeMismatch, lw.Layer, styleAct.Shape(), genAct.Shape())
		}

		gram, err := Gram(styleAct)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", lw.Layer, err)
		}
		grams[lw.Layer] = gram
	}

	return StyleLossFromGrams(grams, generatedActs, layers)
}

// StyleLossFromGrams computes the weighted sum of per-layer style losses
// from precomputed style Gram matrices.
func StyleLossFromGrams[B tensor.Backend](
	styleGrams map[string]*tensor.Tensor[B],
	generatedActs map[string]*tensor.Tensor[B],
	layers []LayerWeight,
) (*tensor.Tensor[B], error) {
	if len(layers) == 0 {
		return nil, errors.New("style: no style layers configured")
	}

	var total *tensor.Tensor[B]
	for _, lw := range layers {
		gram, ok := styleGrams[lw.Layer]
		if !ok {
			return nil, fmt.Errorf("style: missing style Gram for layer %s", lw.Layer)
		}
		genAct, ok := generatedActs[lw.Layer]
		if !ok {
			return nil, fmt.Errorf("style: missing generated activation for layer %s", lw.Layer)
		}

		loss, err := LayerStyleLoss(gram, genAct)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", lw.Layer, err)
		}

		weighted := loss.Scale(lw.Weight)
		if total == nil {
			total = weighted
		} else {
			total = total.Add(weighted)
		}
	}

	return total, nil
}

// TotalLoss combines content and style losses:
//
//	J_total = alpha * J_content + beta * J_style
func TotalLoss[B tensor.Backend](content, style *tensor.Tensor[B], alpha, beta float32) *tensor.Tensor[B] {
	return content.Scale(alpha).Add(style.Scale(beta))
}
