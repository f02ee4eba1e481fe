// Package index implements a flat in-memory similarity index over document
// chunks. The corpus is small (one person's portfolio), so a linear cosine
// scan beats any approximate structure in both simplicity and latency.
package index

import (
	"math"
	"sort"
	"sync"

	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/loader"
)

// Result is one retrieved chunk with its similarity score.
type Result struct {
	Chunk loader.Chunk
	Score float32
}

// Summary reports the current index contents without exposing the vectors.
type Summary struct {
	TotalChunks int            `json:"total_chunks"`
	ByType      map[string]int `json:"by_type"`
	ByFile      map[string]int `json:"by_file"`
}

// Index stores one embedding per chunk, co-located 1:1 in insertion order.
// Build replaces the whole index; chunks are never mutated after insertion.
type Index struct {
	provider embedding.Provider

	mu      sync.RWMutex
	chunks  []loader.Chunk
	vectors [][]float32
	built   bool
}

func New(provider embedding.Provider) *Index {
	return &Index{provider: provider}
}

// Build embeds every chunk and atomically replaces the index contents.
// A chunk whose embedding fails is skipped with the rest still indexed;
// only a provider that fails on every chunk yields an empty index.
func (ix *Index) Build(chunks []loader.Chunk) (*Summary, error) {
	kept := make([]loader.Chunk, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))

	var lastErr error
	for _, c := range chunks {
		res, err := ix.provider.Generate(c.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			lastErr = err
			continue
		}
		if len(res.Embedding.Values) == 0 {
			continue
		}
		kept = append(kept, c)
		vectors = append(vectors, res.Embedding.Values)
	}

	if len(kept) == 0 && lastErr != nil {
		return nil, lastErr
	}

	ix.mu.Lock()
	ix.chunks = kept
	ix.vectors = vectors
	ix.built = true
	ix.mu.Unlock()

	return ix.Summary(), nil
}

// Search embeds the query and returns the k most similar chunks, ties broken
// by insertion order. An empty index yields an empty result. Any provider
// error is returned for logging; callers treat retrieval as best-effort and
// degrade to empty context.
func (ix *Index) Search(query string, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 || k <= 0 {
		return nil, nil
	}

	res, err := ix.provider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	queryVec := res.Embedding.Values

	results := make([]Result, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = Result{
			Chunk: ix.chunks[i],
			Score: CosineSimilarity(queryVec, ix.vectors[i]),
		}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Ready reports whether at least one Build completed. An index built over an
// empty corpus is ready; searches against it simply return no results.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Summary counts indexed chunks by document type and by source file.
func (ix *Index) Summary() *Summary {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	s := &Summary{
		TotalChunks: len(ix.chunks),
		ByType:      make(map[string]int),
		ByFile:      make(map[string]int),
	}
	for _, c := range ix.chunks {
		s.ByType[c.Type]++
		s.ByFile[c.Filename]++
	}
	return s
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Vectors stored here are unit-normalized, so this reduces to a dot product,
// but the magnitudes are kept in the formula to stay correct for arbitrary
// input.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}
