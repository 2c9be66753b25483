package style

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultContentLayer is the trunk layer used for the content loss.
const DefaultContentLayer = "block5_conv2"

// DefaultStyleLayers returns the standard style layer selection: the first
// convolution of each block, weighted to emphasize mid-level texture.
func DefaultStyleLayers() []LayerWeight {
	return []LayerWeight{
		{Layer: "block1_conv1", Weight: 0.5},
		{Layer: "block2_conv1", Weight: 0.6},
		{Layer: "block3_conv1", Weight: 0.8},
		{Layer: "block4_conv1", Weight: 0.8},
		{Layer: "block5_conv1", Weight: 0.5},
	}
}

// ParseLayers parses a comma-separated "name:weight" list, e.g.
// "block1_conv1:0.5,block2_conv1:0.6". Whitespace around entries is ignored.
// An omitted weight defaults to 1.
func ParseLayers(s string) ([]LayerWeight, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty layer list")
	}

	var layers []LayerWeight
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name := part
		weight := float32(1)
		if idx := strings.LastIndex(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			w, err := strconv.ParseFloat(strings.TrimSpace(part[idx+1:]), 32)
			if err != nil {
				return nil, fmt.Errorf("invalid weight in %q: %w", part, err)
			}
			weight = float32(w)
		}
		if name == "" {
			return nil, fmt.Errorf("missing layer name in %q", part)
		}

		layers = append(layers, LayerWeight{Layer: name, Weight: weight})
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("empty layer list")
	}
	return layers, nil
}
