package resilience

import (
	"context"
	"log/slog"

	"github.com/versematch/versematch/pkg/provider/embeddings"
)

// EmbedFallback implements [embeddings.Provider] with automatic failover
// across multiple embedding backends. Each backend sits behind its own
// [Breaker]; when the primary fails or its breaker is tripped, the next
// healthy fallback is tried.
//
// Vectors from different models cannot be compared, so a mid-run failover
// produces vectors the scoring layer silently ignores (dimension mismatch)
// until the caches roll over. That is an accepted degradation: worse scores
// beat no scores.
type EmbedFallback struct {
	group *FallbackGroup[embeddings.Provider]
}

// Compile-time interface assertion.
var _ embeddings.Provider = (*EmbedFallback)(nil)

// NewEmbedFallback creates an [EmbedFallback] with primary as the preferred
// backend.
func NewEmbedFallback(primary embeddings.Provider, primaryName string, cfg FallbackConfig) *EmbedFallback {
	return &EmbedFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional embedding backend as a fallback.
func (f *EmbedFallback) AddFallback(name string, provider embeddings.Provider) {
	if provider.Dimensions() != f.group.entries[0].value.Dimensions() {
		slog.Warn("fallback embedding backend has different dimensions; its vectors will not mix with the primary's",
			"fallback", name,
			"fallback_dims", provider.Dimensions(),
			"primary_dims", f.group.entries[0].value.Dimensions(),
		)
	}
	f.group.AddFallback(name, provider)
}

// Embed computes one embedding via the first healthy backend.
func (f *EmbedFallback) Embed(ctx context.Context, text string) ([]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([]float32, error) {
		return p.Embed(ctx, text)
	})
}

// EmbedBatch embeds several texts via the first healthy backend.
func (f *EmbedFallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return ExecuteWithResult(f.group, func(p embeddings.Provider) ([][]float32, error) {
		return p.EmbedBatch(ctx, texts)
	})
}

// Dimensions returns the primary backend's vector length. This does not
// participate in failover because dimensions are static metadata.
func (f *EmbedFallback) Dimensions() int {
	return f.group.entries[0].value.Dimensions()
}

// ModelID returns the primary backend's model id, which is also the id
// persisted vectors are keyed under.
func (f *EmbedFallback) ModelID() string {
	return f.group.entries[0].value.ModelID()
}

// ResetBreakers re-arms every backend's breaker. Called when the engine
// re-enables semantic scoring after an outage.
func (f *EmbedFallback) ResetBreakers() {
	f.group.ReArmAll()
}
