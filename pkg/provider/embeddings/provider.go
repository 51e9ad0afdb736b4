// Package embeddings defines the Provider interface for the optional
// semantic-scoring backend of the matching engine.
//
// A provider maps text to dense float32 vectors. The engine compares the
// vector of a transcript window with the vectors of candidate verses by
// cosine similarity; when no provider is configured (or the configured one
// stops working) the engine degrades to lexical-only scoring, so nothing in
// this package is ever required for correct operation.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// Every vector returned by one Provider instance has the same length
// (Dimensions). Vectors from different instances must not be mixed in one
// similarity computation unless the caller has verified both use the same
// model.
type Provider interface {
	// Embed computes the embedding vector for one text. The text is passed
	// to the backend verbatim; any model-specific prefixing is the caller's
	// job. Returns an error when the request fails or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts in one backend call; result[i]
	// corresponds to texts[i]. Used for corpus warmup. On error the whole
	// result is nil — partial results are not exposed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector length this provider produces.
	Dimensions() int

	// ModelID identifies the underlying model, for logging and for checking
	// that persisted vectors were produced by the same model.
	ModelID() string
}
