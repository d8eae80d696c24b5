package embedding

import (
	"context"
	"crypto/sha256"
)

// Deterministic derives a vector from the SHA-256 digest of the text.
// Identical input always yields the identical vector; it carries no semantics.
type Deterministic struct {
	dim int
}

// NewDeterministic creates a deterministic provider. dim <= 0 uses DefaultDimension.
func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Deterministic{dim: dim}
}

func (d *Deterministic) Name() string { return ModeFake }

func (d *Deterministic) Dimension() int { return d.dim }

// Embed maps digest byte i%32 into [-1, 1] for every slot i
func (d *Deterministic) Embed(_ context.Context, text string) ([]float64, error) {
	digest := sha256.Sum256([]byte(text))
	vec := make([]float64, d.dim)
	for i := range vec {
		vec[i] = float64(digest[i%len(digest)])/255.0*2 - 1
	}
	return vec, nil
}
