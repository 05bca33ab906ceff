package embeddings

import (
	"context"
	"fmt"
	"math"
)

const (
	// ModelID is the public identifier reported for every embedding.
	ModelID = "sovereign-minilm-l6"
	// Dimensions is the fixed width of every embedding returned by the service.
	Dimensions = 384
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Embedder defines the embedding interface. Implementations return
// mean-pooled, unit-length vectors and must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Close() error
}

// CapabilityError tags a failure raised while invoking the model or
// post-processing its output. Error reports the underlying message verbatim.
type CapabilityError struct {
	Err error
}

func (e *CapabilityError) Error() string { return e.Err.Error() }

func (e *CapabilityError) Unwrap() error { return e.Err }

// Embed runs e on text and enforces the fixed output width.
// Every failure comes back as a *CapabilityError.
func Embed(ctx context.Context, e Embedder, text string) (Vector, error) {
	vec, err := e.Embed(ctx, text)
	if err != nil {
		return nil, &CapabilityError{Err: err}
	}
	if len(vec) != Dimensions {
		return nil, &CapabilityError{Err: fmt.Errorf("embedding has %d dimensions, want %d", len(vec), Dimensions)}
	}
	return vec, nil
}

// Normalize returns v scaled to unit length. A zero vector is returned as is.
func Normalize(v Vector) Vector {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make(Vector, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when the vectors are empty, differ in length, or either is zero.
func CosineSimilarity(a, b Vector) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
