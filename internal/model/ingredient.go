package model

// BoundingBox is a normalized [ymin, xmin, ymax, xmax] box in the source
// image, each coordinate in [0,1].
type BoundingBox [4]float64

// Normalize returns a copy with inverted min/max pairs swapped and all
// coordinates clamped to [0,1]. The vision service does not guarantee
// min <= max, so this runs unconditionally at the gateway boundary.
func (b BoundingBox) Normalize() BoundingBox {
	out := b
	for i := range out {
		if out[i] < 0 {
			out[i] = 0
		}
		if out[i] > 1 {
			out[i] = 1
		}
	}
	if out[0] > out[2] {
		out[0], out[2] = out[2], out[0]
	}
	if out[1] > out[3] {
		out[1], out[3] = out[3], out[1]
	}
	return out
}

// DetectedIngredient is one ingredient the vision call found in the
// uploaded photo. Transient: never persisted, only held while the user is
// picking ingredients. Box is nil when the service returned no overlay.
type DetectedIngredient struct {
	Name string       `json:"name"`
	Box  *BoundingBox `json:"box_2d,omitempty"`
}
